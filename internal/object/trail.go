package object

// Trail is the capped exhaust buffer behind the satellite. Particles are kept
// oldest first; pushing past the cap drops the oldest.
type Trail struct {
	buf []Particle
	max int
}

// NewTrail creates a trail holding at most max particles.
func NewTrail(max int) *Trail {
	if max < 0 {
		max = 0
	}
	return &Trail{buf: make([]Particle, 0, max), max: max}
}

// SetMax changes the cap, dropping the oldest particles if needed.
func (t *Trail) SetMax(max int) {
	if max < 0 {
		max = 0
	}
	t.max = max
	t.trim()
}

// Max returns the cap.
func (t *Trail) Max() int { return t.max }

// Push appends particles and enforces the cap.
func (t *Trail) Push(ps ...Particle) {
	t.buf = append(t.buf, ps...)
	t.trim()
}

func (t *Trail) trim() {
	if over := len(t.buf) - t.max; over > 0 {
		n := copy(t.buf, t.buf[over:])
		clear(t.buf[n:])
		t.buf = t.buf[:n]
	}
}

// Update ages the trail with trail drag and the given fade.
func (t *Trail) Update(fade float64) {
	t.buf = UpdateParticles(t.buf, TrailDrag, fade)
}

// Len returns the number of live trail particles.
func (t *Trail) Len() int { return len(t.buf) }

// Particles returns the live particles, oldest first. The slice aliases the
// trail and is only valid until the next Push or Update.
func (t *Trail) Particles() []Particle { return t.buf }

// Reset drops every particle.
func (t *Trail) Reset() {
	clear(t.buf)
	t.buf = t.buf[:0]
}
