package gif

// Info summarizes a scanned stream for display.
type Info struct {
	Size     int       `json:"size"`
	Frames   int       `json:"frames"`
	Loop     *uint16   `json:"loop,omitempty"`
	Delays   []uint16  `json:"delays"`
	Trailing int       `json:"trailing,omitempty"`
	Sections []Section `json:"sections"`
}

// Describe reads frame delays and the loop count of data using l, which
// must be the layout of data.
func Describe(data []byte, l *Layout) Info {
	info := Info{
		Size:     len(data),
		Trailing: l.Trailing,
		Sections: l.Sections,
		Delays:   []uint16{},
	}
	for _, f := range l.Frames() {
		info.Delays = append(info.Delays, FrameDelay(data, f))
	}
	info.Frames = len(info.Delays)
	if n, ok := l.LoopCount(data); ok {
		info.Loop = &n
	}
	return info
}

// TotalDelay returns the sum of all frame delays in hundredths of a second.
func (i Info) TotalDelay() int {
	total := 0
	for _, d := range i.Delays {
		total += int(d)
	}
	return total
}
