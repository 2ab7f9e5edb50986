// Package sqlite persists the pricing configuration in the relational tables created by
// the goose migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/moveops/internal/catalog"
	"github.com/Simplici0/moveops/internal/extras"
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/ratecard"
	"github.com/Simplici0/moveops/internal/store"
)

// Persister implements store.Persister on a *sql.DB opened with db.Open.
type Persister struct {
	db *sql.DB
}

// New returns a persister backed by database.
func New(database *sql.DB) *Persister {
	return &Persister{db: database}
}

// Load reads every store. It returns store.ErrNotSeeded when no rate card or margin
// policy row exists yet.
func (p *Persister) Load(ctx context.Context) (store.Snapshot, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	policy, err := loadMarginPolicy(ctx, tx)
	if err != nil {
		return store.Snapshot{}, err
	}
	cards, err := loadRateCards(ctx, tx)
	if err != nil {
		return store.Snapshot{}, err
	}
	if len(cards.Cards) == 0 {
		return store.Snapshot{}, store.ErrNotSeeded
	}
	items, err := loadItems(ctx, tx)
	if err != nil {
		return store.Snapshot{}, err
	}
	ex, err := loadExtras(ctx, tx)
	if err != nil {
		return store.Snapshot{}, err
	}

	return store.Snapshot{Items: items, RateCards: cards, Extras: ex, Margin: policy}, nil
}

func loadMarginPolicy(ctx context.Context, tx *sql.Tx) (margin.Policy, error) {
	var p margin.Policy
	var mode string
	err := tx.QueryRowContext(ctx, `
		SELECT mode, percentage, fixed_amount, minimum_amount, use_operator_rate_card
		FROM margin_policy
		WHERE id = 1
	`).Scan(&mode, &p.Percentage, &p.FixedAmount, &p.MinimumAmount, &p.UseOperatorRateCard)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return margin.Policy{}, store.ErrNotSeeded
		}
		return margin.Policy{}, fmt.Errorf("query margin_policy: %w", err)
	}
	p.Mode = margin.Mode(mode)
	return p, nil
}

func loadRateCards(ctx context.Context, tx *sql.Tx) (ratecard.Set, error) {
	set := ratecard.Set{Cards: map[string]ratecard.RateCard{}}

	rows, err := tx.QueryContext(ctx, `
		SELECT service_type, include_volume_price, is_default
		FROM rate_cards
		ORDER BY service_type
	`)
	if err != nil {
		return ratecard.Set{}, fmt.Errorf("query rate_cards: %w", err)
	}
	for rows.Next() {
		var card ratecard.RateCard
		var isDefault bool
		if err := rows.Scan(&card.ServiceType, &card.IncludeVolumePrice, &isDefault); err != nil {
			rows.Close()
			return ratecard.Set{}, fmt.Errorf("scan rate card: %w", err)
		}
		if isDefault {
			set.DefaultServiceType = card.ServiceType
		}
		set.Cards[card.ServiceType] = card
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return ratecard.Set{}, fmt.Errorf("iterate rate cards: %w", err)
	}
	rows.Close()

	tiers, err := tx.QueryContext(ctx, `
		SELECT service_type, id, name, min_volume_m3, max_volume_m3, base_fee, price_per_mile,
			price_per_cubic_meter, minimum_charge, crew1_price, crew2_price, crew3_price,
			stairs_price_per_flight, congestion_charge
		FROM vehicle_tiers
		ORDER BY service_type, position
	`)
	if err != nil {
		return ratecard.Set{}, fmt.Errorf("query vehicle_tiers: %w", err)
	}
	defer tiers.Close()

	for tiers.Next() {
		var serviceType string
		var t ratecard.VehicleTier
		if err := tiers.Scan(
			&serviceType, &t.ID, &t.Name, &t.MinVolumeM3, &t.MaxVolumeM3, &t.BaseFee, &t.PricePerMile,
			&t.PricePerCubicMeter, &t.MinimumCharge, &t.Crew1Price, &t.Crew2Price, &t.Crew3Price,
			&t.StairsPricePerFlight, &t.CongestionCharge,
		); err != nil {
			return ratecard.Set{}, fmt.Errorf("scan vehicle tier: %w", err)
		}
		card, ok := set.Cards[serviceType]
		if !ok {
			continue
		}
		card.Tiers = append(card.Tiers, t)
		set.Cards[serviceType] = card
	}
	if err := tiers.Err(); err != nil {
		return ratecard.Set{}, fmt.Errorf("iterate vehicle tiers: %w", err)
	}

	return set, nil
}

func loadItems(ctx context.Context, tx *sql.Tx) (catalog.Catalog, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, category, volume_m3, is_heavy, requires_2crew, active
		FROM items
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.VolumeM3, &it.IsHeavy, &it.Requires2Crew, &it.Active); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return catalog.New(items), nil
}

func loadExtras(ctx context.Context, tx *sql.Tx) (extras.Catalog, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, price, charge_type
		FROM extra_services
	`)
	if err != nil {
		return nil, fmt.Errorf("query extra_services: %w", err)
	}
	defer rows.Close()

	var services []extras.Service
	for rows.Next() {
		var s extras.Service
		var chargeType string
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &chargeType); err != nil {
			return nil, fmt.Errorf("scan extra service: %w", err)
		}
		s.ChargeType = extras.ChargeType(chargeType)
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extra services: %w", err)
	}
	return extras.New(services), nil
}

// Save replaces every store inside one transaction.
func (p *Persister) Save(ctx context.Context, snap store.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}

	if err := saveAll(ctx, tx, snap); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

func saveAll(ctx context.Context, tx *sql.Tx, snap store.Snapshot) error {
	for _, table := range []string{"vehicle_tiers", "rate_cards", "extra_services", "items"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, serviceType := range snap.RateCards.ServiceTypes() {
		card := snap.RateCards.Cards[serviceType]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rate_cards (service_type, include_volume_price, is_default)
			VALUES (?, ?, ?)
		`, serviceType, card.IncludeVolumePrice, serviceType == snap.RateCards.DefaultServiceType); err != nil {
			return fmt.Errorf("insert rate card %q: %w", serviceType, err)
		}

		for pos, t := range card.Tiers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO vehicle_tiers (
					service_type, id, position, name, min_volume_m3, max_volume_m3, base_fee,
					price_per_mile, price_per_cubic_meter, minimum_charge, crew1_price, crew2_price,
					crew3_price, stairs_price_per_flight, congestion_charge
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				serviceType, t.ID, pos, t.Name, t.MinVolumeM3, t.MaxVolumeM3, t.BaseFee,
				t.PricePerMile, t.PricePerCubicMeter, t.MinimumCharge, t.Crew1Price, t.Crew2Price,
				t.Crew3Price, t.StairsPricePerFlight, t.CongestionCharge,
			); err != nil {
				return fmt.Errorf("insert vehicle tier %q/%q: %w", serviceType, t.ID, err)
			}
		}
	}

	for _, s := range snap.Extras.Services() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO extra_services (id, name, price, charge_type)
			VALUES (?, ?, ?, ?)
		`, s.ID, s.Name, s.Price, string(s.ChargeType)); err != nil {
			return fmt.Errorf("insert extra service %q: %w", s.ID, err)
		}
	}

	for _, it := range snap.Items.Items() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, name, category, volume_m3, is_heavy, requires_2crew, active)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, it.ID, it.Name, it.Category, it.VolumeM3, it.IsHeavy, it.Requires2Crew, it.Active); err != nil {
			return fmt.Errorf("insert item %q: %w", it.ID, err)
		}
	}

	m := snap.Margin
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO margin_policy (id, mode, percentage, fixed_amount, minimum_amount, use_operator_rate_card)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			percentage = excluded.percentage,
			fixed_amount = excluded.fixed_amount,
			minimum_amount = excluded.minimum_amount,
			use_operator_rate_card = excluded.use_operator_rate_card,
			updated_at = CURRENT_TIMESTAMP
	`, string(m.Mode), m.Percentage, m.FixedAmount, m.MinimumAmount, m.UseOperatorRateCard); err != nil {
		return fmt.Errorf("upsert margin_policy: %w", err)
	}

	return nil
}
