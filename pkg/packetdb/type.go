package packetdb

type DbRun struct {
	ID            string   `db:"id"`
	CaptureA      string   `db:"capture_a"`
	CaptureB      string   `db:"capture_b"`
	StartedAt     int64    `db:"started_at"`
	InitialConfig string   `db:"initial_config"`
	EndTime       *float64 `db:"end_time"`
	PacketCount   int      `db:"packet_count"`
}

type DbPacket struct {
	RunID     string  `db:"run_id"`
	Seq       int     `db:"seq"`
	Channel   int     `db:"channel"`
	StartTime float64 `db:"start_time"`
	EndTime   float64 `db:"end_time"`
	Status    string  `db:"status"`
	Direction string  `db:"direction"`
	Type      string  `db:"packet_type"`
	Summary   string  `db:"summary"`
	// Set when the packet changed the line configuration
	ConfigUpdate *string `db:"config_update"`
}
