package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"township-rental-portal/internal/models"
)

// DB is the optional Postgres listing mirror. Deployments that still
// serve the public listing feed from the old Postgres instance point the
// read path here; the primary MySQL store stays authoritative.
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the mirrored properties table if it doesn't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(36) PRIMARY KEY,
		landlord_id VARCHAR(36) NOT NULL,
		township_id VARCHAR(36),
		title TEXT NOT NULL,
		description TEXT,
		address TEXT,

		-- Filter fields
		property_type VARCHAR(30),
		bedrooms INTEGER,
		rent_amount DECIMAL(10, 2) NOT NULL,
		deposit_amount DECIMAL(10, 2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'available',

		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Create indexes for filtering
	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_rent_amount ON properties(rent_amount);
	CREATE INDEX IF NOT EXISTS idx_properties_property_type ON properties(property_type);
	CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);
	`
	_, err := db.conn.Exec(query)
	return err
}

// MirrorProperty upserts a listing into the mirror
func (db *DB) MirrorProperty(p *models.Property) error {
	query := `
	INSERT INTO properties (
		id, landlord_id, township_id, title, description, address,
		property_type, bedrooms, rent_amount, deposit_amount, status,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		address = EXCLUDED.address,
		property_type = EXCLUDED.property_type,
		bedrooms = EXCLUDED.bedrooms,
		rent_amount = EXCLUDED.rent_amount,
		deposit_amount = EXCLUDED.deposit_amount,
		status = EXCLUDED.status,
		updated_at = EXCLUDED.updated_at
	`
	_, err := db.conn.Exec(query,
		p.ID, p.LandlordID, nullString(p.TownshipID), p.Title, p.Description, p.Address,
		p.PropertyType, p.Bedrooms, p.RentAmount, p.DepositAmount, string(p.Status),
		p.CreatedAt, p.UpdatedAt)
	return err
}

// ListProperties retrieves mirrored listings matching the filters
func (db *DB) ListProperties(params ListParams) ([]models.Property, error) {
	query := `SELECT id, landlord_id, COALESCE(township_id, ''), title,
		COALESCE(description, ''), COALESCE(address, ''),
		COALESCE(property_type, ''), bedrooms, rent_amount, deposit_amount,
		status, created_at, updated_at
	FROM properties WHERE 1=1`

	args := []interface{}{}
	idx := 1

	addArg := func(clause string, value interface{}) {
		query += fmt.Sprintf(" AND %s $%d", clause, idx)
		args = append(args, value)
		idx++
	}

	if params.TownshipID != "" {
		addArg("township_id =", params.TownshipID)
	}
	if params.PropertyType != "" {
		addArg("property_type =", params.PropertyType)
	}
	if params.MinRent != nil {
		addArg("rent_amount >=", *params.MinRent)
	}
	if params.MaxRent != nil {
		addArg("rent_amount <=", *params.MaxRent)
	}
	if params.MinBedrooms != nil {
		addArg("bedrooms >=", *params.MinBedrooms)
	}
	if params.Status != "" {
		addArg("status =", params.Status)
	} else {
		addArg("status =", string(models.PropertyStatusAvailable))
	}

	switch params.SortBy {
	case "rent_asc":
		query += " ORDER BY rent_amount ASC"
	case "rent_desc":
		query += " ORDER BY rent_amount DESC"
	case "oldest":
		query += " ORDER BY created_at ASC"
	default:
		query += " ORDER BY created_at DESC"
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, params.Offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		var status string
		if err := rows.Scan(
			&p.ID, &p.LandlordID, &p.TownshipID, &p.Title,
			&p.Description, &p.Address,
			&p.PropertyType, &p.Bedrooms, &p.RentAmount, &p.DepositAmount,
			&status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Status = models.PropertyStatus(status)
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
