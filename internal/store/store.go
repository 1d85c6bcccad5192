package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"scamguard/internal/scam"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("missing database dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type Message struct {
	ID        string
	Source    string
	Sender    string
	Text      string
	CreatedAt time.Time
}

type AnalysisRecord struct {
	ID        string
	MessageID string
	Analysis  scam.Analysis
	CreatedAt time.Time
}

func (s *Store) InsertMessage(ctx context.Context, msg Message) (string, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO messages (id, source, sender, text, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		msg.ID, msg.Source, msg.Sender, msg.Text, msg.CreatedAt)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (s *Store) GetMessage(ctx context.Context, messageID string) (Message, error) {
	var m Message
	row := s.db.QueryRowContext(ctx, `SELECT id, source, sender, text, created_at FROM messages WHERE id = $1`, messageID)
	if err := row.Scan(&m.ID, &m.Source, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
		return m, err
	}
	return m, nil
}

func (s *Store) InsertAnalysis(ctx context.Context, messageID string, a scam.Analysis) (string, error) {
	id := uuid.NewString()
	reasons, _ := json.Marshal(a.Reasons)
	keywords, _ := json.Marshal(a.DetectedKeywords)
	parts, _ := json.Marshal(a.SuspiciousParts)
	_, err := s.db.ExecContext(ctx, `INSERT INTO analyses (id, message_id, is_scam, confidence, scam_type, detection_method, warning_message, reasons, detected_keywords, suspicious_parts)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, messageID, a.IsScam, a.Confidence, string(a.ScamType), string(a.DetectionMethod), a.WarningMessage, reasons, keywords, parts)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetAnalysis(ctx context.Context, analysisID string) (AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, message_id, is_scam, confidence, scam_type, detection_method, warning_message, reasons, detected_keywords, suspicious_parts, created_at
		FROM analyses WHERE id = $1`, analysisID)
	return scanAnalysis(row)
}

func (s *Store) GetAnalysisByMessage(ctx context.Context, messageID string) (AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, message_id, is_scam, confidence, scam_type, detection_method, warning_message, reasons, detected_keywords, suspicious_parts, created_at
		FROM analyses WHERE message_id = $1 ORDER BY created_at DESC LIMIT 1`, messageID)
	return scanAnalysis(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (AnalysisRecord, error) {
	var rec AnalysisRecord
	var scamType, method string
	var reasons, keywords, parts []byte
	if err := row.Scan(&rec.ID, &rec.MessageID, &rec.Analysis.IsScam, &rec.Analysis.Confidence,
		&scamType, &method, &rec.Analysis.WarningMessage, &reasons, &keywords, &parts, &rec.CreatedAt); err != nil {
		return rec, err
	}
	rec.Analysis.ScamType = scam.Type(scamType)
	rec.Analysis.DetectionMethod = scam.Method(method)
	_ = json.Unmarshal(reasons, &rec.Analysis.Reasons)
	_ = json.Unmarshal(keywords, &rec.Analysis.DetectedKeywords)
	_ = json.Unmarshal(parts, &rec.Analysis.SuspiciousParts)
	return rec, nil
}

func (s *Store) ListRecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, message_id, is_scam, confidence, scam_type, detection_method, warning_message, reasons, detected_keywords, suspicious_parts, created_at
		FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) CountByScamType(ctx context.Context) (map[scam.Type]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT scam_type, count(*) FROM analyses GROUP BY scam_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[scam.Type]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[scam.Type(t)] = n
	}
	return out, rows.Err()
}
