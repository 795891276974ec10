package application

type Cue int

const (
	CueStart Cue = iota
	CueStop
	CueError
)

func (c Cue) String() string {
	switch c {
	case CueStart:
		return "start"
	case CueStop:
		return "stop"
	case CueError:
		return "error"
	default:
		return "unknown"
	}
}

// CuePlayer plays short feedback sounds. Play must never block the caller;
// implementations with no loaded sounds simply do nothing.
type CuePlayer interface {
	Play(cue Cue)
}

type NoopCues struct{}

func (n *NoopCues) Play(_ Cue) {}
