package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"smpadmin/internal/sml/models"
	"smpadmin/pkg/platform/sentinel"
	"smpadmin/pkg/platform/tx"
)

// Schema creates the SML catalogue table.
const Schema = `
CREATE TABLE IF NOT EXISTS smp_sml_info (
	id                 TEXT PRIMARY KEY,
	display_name       TEXT NOT NULL,
	dns_zone           TEXT NOT NULL,
	service_url        TEXT NOT NULL,
	manage_smp         TEXT NOT NULL,
	manage_participant TEXT NOT NULL,
	client_cert        BOOLEAN NOT NULL
);
`

const uniqueViolation = "23505"

// PostgresStore persists the SML catalogue in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed SML catalogue.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the table when it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate sml info schema: %w", err)
	}
	return nil
}

// Seed inserts infos that are not present yet, in one transaction.
// Existing rows are kept.
func (s *PostgresStore) Seed(ctx context.Context, infos ...models.SMLInfo) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		conn := tx.ConnFrom(ctx, s.db)
		for _, info := range infos {
			_, err := conn.ExecContext(ctx, `
				INSERT INTO smp_sml_info (id, display_name, dns_zone, service_url, manage_smp, manage_participant, client_cert)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO NOTHING
			`, info.ID, info.DisplayName, info.DNSZone, info.ManagementServiceURL,
				info.URLSuffixManageSMP, info.URLSuffixManageParticipant, info.ClientCertificateRequired)
			if err != nil {
				return fmt.Errorf("seed sml info %s: %w", info.ID, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Create(ctx context.Context, info models.SMLInfo) error {
	_, err := tx.ConnFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO smp_sml_info (id, display_name, dns_zone, service_url, manage_smp, manage_participant, client_cert)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, info.ID, info.DisplayName, info.DNSZone, info.ManagementServiceURL,
		info.URLSuffixManageSMP, info.URLSuffixManageParticipant, info.ClientCertificateRequired)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert sml info: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, info models.SMLInfo) error {
	res, err := tx.ConnFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE smp_sml_info
		SET display_name = $2, dns_zone = $3, service_url = $4,
		    manage_smp = $5, manage_participant = $6, client_cert = $7
		WHERE id = $1
	`, info.ID, info.DisplayName, info.DNSZone, info.ManagementServiceURL,
		info.URLSuffixManageSMP, info.URLSuffixManageParticipant, info.ClientCertificateRequired)
	if err != nil {
		return fmt.Errorf("update sml info: %w", err)
	}
	return requireOneRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := tx.ConnFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM smp_sml_info WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sml info: %w", err)
	}
	return requireOneRow(res)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.SMLInfo, error) {
	row := tx.ConnFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, display_name, dns_zone, service_url, manage_smp, manage_participant, client_cert
		FROM smp_sml_info WHERE id = $1
	`, id)
	info, err := scanInfo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find sml info by id: %w", err)
	}
	return info, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.SMLInfo, error) {
	rows, err := tx.ConnFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, display_name, dns_zone, service_url, manage_smp, manage_participant, client_cert
		FROM smp_sml_info ORDER BY display_name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query sml infos: %w", err)
	}
	defer rows.Close()

	var infos []models.SMLInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sml info: %w", err)
		}
		infos = append(infos, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sml infos: %w", err)
	}
	return infos, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (*models.SMLInfo, error) {
	var info models.SMLInfo
	err := row.Scan(&info.ID, &info.DisplayName, &info.DNSZone, &info.ManagementServiceURL,
		&info.URLSuffixManageSMP, &info.URLSuffixManageParticipant, &info.ClientCertificateRequired)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
