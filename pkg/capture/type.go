package capture

// EdgeTrace is one captured digital channel: the level the line idled
// at, the capture window, and the time of every level change.
type EdgeTrace struct {
	InitialLevel int32
	BeginTime    float64
	EndTime      float64
	Transitions  []float64
}

func (t *EdgeTrace) Len() int {
	return len(t.Transitions)
}

// Saleae Logic 2 binary export layout
const (
	magic          = "<SALEAE>"
	formatVersion  = 0
	typeDigital    = 0
	typeAnalog     = 1
	readChunkEdges = 64 * 1024
)

type fileHeader struct {
	Identifier [8]byte
	Version    int32
	DataType   int32
}

type digitalHeader struct {
	InitialState   int32
	BeginTime      float64
	EndTime        float64
	NumTransitions int64
}
