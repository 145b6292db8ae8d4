package analyzer

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what a run saw, on its own registry so several runs in
// one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	Characters     *prometheus.CounterVec
	Glitches       *prometheus.CounterVec
	FramingErrors  *prometheus.CounterVec
	ParityErrors   *prometheus.CounterVec
	NonPacketBytes *prometheus.CounterVec
	AbortedFrames  *prometheus.CounterVec
	Packets        *prometheus.CounterVec
	PacketTypes    *prometheus.CounterVec
	ConfigCommits  prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Characters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_characters_total",
			Help: "Characters decoded with good framing and parity.",
		}, []string{"channel"}),
		Glitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_glitches_total",
			Help: "Edges ignored for arriving too soon after the previous edge.",
		}, []string{"channel"}),
		FramingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_framing_errors_total",
			Help: "Characters dropped for edges off the bit grid.",
		}, []string{"channel", "kind"}),
		ParityErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_parity_errors_total",
			Help: "Characters dropped for a bad parity bit.",
		}, []string{"channel"}),
		NonPacketBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_non_packet_bytes_total",
			Help: "Characters seen outside any frame.",
		}, []string{"channel"}),
		AbortedFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_aborted_frames_total",
			Help: "Frames discarded for an illegal escape sequence.",
		}, []string{"channel"}),
		Packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_packets_total",
			Help: "Frames handed to the packet interpreter, by outcome.",
		}, []string{"channel", "status"}),
		PacketTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sss_packet_types_total",
			Help: "Packets with a good CRC, by direction and type.",
		}, []string{"direction", "type"}),
		ConfigCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sss_config_commits_total",
			Help: "Line configuration changes taken from PARAMS responses.",
		}),
	}
	m.registry.MustRegister(
		m.Characters,
		m.Glitches,
		m.FramingErrors,
		m.ParityErrors,
		m.NonPacketBytes,
		m.AbortedFrames,
		m.Packets,
		m.PacketTypes,
		m.ConfigCommits,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the counters in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func channelLabel(id int) string {
	return strconv.Itoa(id)
}
