package audio

// param is a gain automated by linear ramps on the mixer's frame clock.
type param struct {
	from, to   float32
	start, end int64
}

func constant(v float32) param {
	return param{from: v, to: v}
}

// at returns the value at frame f.
func (p param) at(f int64) float32 {
	if f >= p.end || p.end <= p.start {
		return p.to
	}
	if f <= p.start {
		return p.from
	}
	k := float32(f-p.start) / float32(p.end-p.start)
	return p.from + (p.to-p.from)*k
}

// rampTo cancels whatever ramp is in flight and starts a new one from the
// current value at now.
func (p *param) rampTo(target float32, now, frames int64) {
	cur := p.at(now)
	p.from, p.to = cur, target
	p.start, p.end = now, now+frames
}
