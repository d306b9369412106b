package simact

import "actuatorcode-go/x/mathx"

// gains is the float view of one loop's settings.
type gains struct {
	kp, ki, kd float64
	ilimit     float64 // bound on |ki·∫e|; 0 = unbounded
	maxOut     float64 // bound on |output|; 0 = unbounded
}

type pid struct {
	integ  float64
	prev   float64
	primed bool
}

func (p *pid) reset() { *p = pid{} }

func (p *pid) update(g gains, e, dt float64) float64 {
	p.integ += e * dt
	if g.ilimit > 0 && g.ki > 0 {
		lim := g.ilimit / g.ki
		p.integ = mathx.Clamp(p.integ, -lim, lim)
	}
	var d float64
	if p.primed {
		d = (e - p.prev) / dt
	}
	p.prev, p.primed = e, true

	u := g.kp*e + g.ki*p.integ + g.kd*d
	if g.maxOut > 0 {
		u = mathx.Clamp(u, -g.maxOut, g.maxOut)
	}
	return u
}
