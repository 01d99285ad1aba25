package trackers

// Loss tracks and saves the losses of a single phase of an experiment.
// For the training phase, one loss is saved per example. For the test
// phase, one loss is saved per epoch.
type Loss struct {
	phase    Phase
	losses   []float64
	filename string
}

// NewLoss creates and returns a new *Loss Tracker
func NewLoss(phase Phase, filename string) *Loss {
	return &Loss{phase: phase, filename: filename}
}

// Track caches the loss of r if r was made in the tracked phase
func (l *Loss) Track(r Record) {
	if r.Phase != l.phase {
		return
	}
	l.losses = append(l.losses, r.Loss)
}

// Data returns the losses tracked so far
func (l *Loss) Data() []float64 {
	return l.losses
}

// Save saves the tracked losses to disk
func (l *Loss) Save() error {
	return save(l.filename, l.losses)
}

// Mean tracks the mean loss of each epoch of a single phase of an
// experiment
type Mean struct {
	phase    Phase
	epoch    int
	total    float64
	count    int
	means    []float64
	filename string
}

// NewMean creates and returns a new *Mean Tracker
func NewMean(phase Phase, filename string) *Mean {
	return &Mean{phase: phase, epoch: -1, filename: filename}
}

// Track accumulates the loss of r if r was made in the tracked phase.
// Records must be tracked in epoch order.
func (m *Mean) Track(r Record) {
	if r.Phase != m.phase {
		return
	}
	if r.Epoch != m.epoch {
		m.flush()
		m.epoch = r.Epoch
	}
	m.total += r.Loss
	m.count++
}

// flush stores the mean of the current epoch
func (m *Mean) flush() {
	if m.count > 0 {
		m.means = append(m.means, m.total/float64(m.count))
	}
	m.total = 0
	m.count = 0
}

// Data returns the mean loss of every completed epoch, and of the
// current epoch
func (m *Mean) Data() []float64 {
	data := append([]float64(nil), m.means...)
	if m.count > 0 {
		data = append(data, m.total/float64(m.count))
	}
	return data
}

// Save saves the per-epoch mean losses to disk
func (m *Mean) Save() error {
	return save(m.filename, m.Data())
}
