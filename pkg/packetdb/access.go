package packetdb

import "database/sql"

func InsertRun(db *sql.DB, run *DbRun) error {
	_, err := db.Exec(
		"INSERT INTO runs (id, capture_a, capture_b, started_at, initial_config) "+
			"VALUES (?, ?, ?, ?, ?)",
		run.ID,
		run.CaptureA,
		run.CaptureB,
		run.StartedAt,
		run.InitialConfig,
	)
	return err
}

func InsertPacket(db *sql.DB, p *DbPacket) error {
	_, err := db.Exec(
		"INSERT INTO packets "+
			"(run_id, seq, channel, start_time, end_time, status, direction, packet_type, summary, config_update) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.RunID,
		p.Seq,
		p.Channel,
		p.StartTime,
		p.EndTime,
		p.Status,
		p.Direction,
		p.Type,
		p.Summary,
		p.ConfigUpdate,
	)
	return err
}

func FinishRun(db *sql.DB, runID string, endTime float64, packetCount int) error {
	_, err := db.Exec(
		"UPDATE runs SET end_time = ?, packet_count = ? WHERE id = ?",
		endTime,
		packetCount,
		runID,
	)
	return err
}

func GetRun(db *sql.DB, runID string) (*DbRun, error) {
	var run DbRun
	err := db.QueryRow(
		"SELECT id, capture_a, capture_b, started_at, initial_config, end_time, packet_count "+
			"FROM runs WHERE id = ?",
		runID,
	).Scan(
		&run.ID,
		&run.CaptureA,
		&run.CaptureB,
		&run.StartedAt,
		&run.InitialConfig,
		&run.EndTime,
		&run.PacketCount,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunPackets lists a run's packets in the order they were decoded.
func GetRunPackets(db *sql.DB, runID string) ([]DbPacket, error) {
	rows, err := db.Query(
		"SELECT run_id, seq, channel, start_time, end_time, status, direction, packet_type, summary, config_update "+
			"FROM packets WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DbPacket
	for rows.Next() {
		var p DbPacket
		if err := rows.Scan(
			&p.RunID,
			&p.Seq,
			&p.Channel,
			&p.StartTime,
			&p.EndTime,
			&p.Status,
			&p.Direction,
			&p.Type,
			&p.Summary,
			&p.ConfigUpdate,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
