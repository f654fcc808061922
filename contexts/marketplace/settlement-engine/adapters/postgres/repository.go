package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	"nftmarket/contexts/marketplace/settlement-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	configRowID = 1
)

// Repository implements ports.Registry and ports.OutboxRepository on Postgres.
// Inside WithinTransaction the config row is read with FOR UPDATE, which
// serializes marketplace mutations across API replicas.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
	inTx   bool
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the marketplace tables.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&listingModel{},
		&collectionModel{},
		&configModel{},
		&templateModel{},
		&outboxModel{},
	)
}

func (r *Repository) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, store ports.RegistryStore) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Repository{db: tx, logger: r.logger, inTx: true})
	})
}

func (r *Repository) GetListing(ctx context.Context, key entities.ListingKey) (entities.Listing, bool, error) {
	var row listingModel
	query := r.db.WithContext(ctx)
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.
		Where("collection = ? AND token_id = ?", string(key.Collection), string(key.Token)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, false, nil
		}
		return entities.Listing{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) PutListing(ctx context.Context, listing entities.Listing) error {
	row := listingModelFromEntity(listing)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrItemAlreadyListedForSale
		}
		return err
	}
	return nil
}

func (r *Repository) RemoveListing(ctx context.Context, key entities.ListingKey) error {
	return r.db.WithContext(ctx).
		Where("collection = ? AND token_id = ?", string(key.Collection), string(key.Token)).
		Delete(&listingModel{}).
		Error
}

func (r *Repository) ContainsListing(ctx context.Context, key entities.ListingKey) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&listingModel{}).
		Where("collection = ? AND token_id = ?", string(key.Collection), string(key.Token)).
		Count(&count).
		Error
	return count > 0, err
}

func (r *Repository) GetCollection(ctx context.Context, collection entities.AccountID) (entities.RegisteredCollection, bool, error) {
	var row collectionModel
	err := r.db.WithContext(ctx).
		Where("collection = ?", string(collection)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RegisteredCollection{}, false, nil
		}
		return entities.RegisteredCollection{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) PutCollection(ctx context.Context, collection entities.RegisteredCollection) error {
	row := collectionModel{
		Collection:      string(collection.Collection),
		RoyaltyReceiver: string(collection.RoyaltyReceiver),
		RoyaltyBPS:      int(collection.Royalty),
		MetadataURI:     collection.MetadataURI,
		UpdatedAt:       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}},
			DoUpdates: clause.AssignmentColumns([]string{"royalty_receiver", "royalty_bps", "metadata_uri", "updated_at"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ContainsCollection(ctx context.Context, collection entities.AccountID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&collectionModel{}).
		Where("collection = ?", string(collection)).
		Count(&count).
		Error
	return count > 0, err
}

func (r *Repository) GetConfig(ctx context.Context) (entities.MarketplaceConfig, bool, error) {
	var row configModel
	query := r.db.WithContext(ctx)
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ?", configRowID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.MarketplaceConfig{}, false, nil
		}
		return entities.MarketplaceConfig{}, false, err
	}

	var templates []templateModel
	if err := r.db.WithContext(ctx).Find(&templates).Error; err != nil {
		return entities.MarketplaceConfig{}, false, err
	}

	config := entities.MarketplaceConfig{
		Owner:        entities.AccountID(row.Owner),
		Fee:          entities.BasisPoints(row.FeeBPS),
		MaxFee:       entities.BasisPoints(row.MaxFeeBPS),
		FeeRecipient: entities.AccountID(row.FeeRecipient),
		Nonce:        uint64(row.Nonce),
		Templates:    make(map[entities.ContractType]entities.TemplateHandle, len(templates)),
	}
	for _, template := range templates {
		var handle entities.TemplateHandle
		if len(template.CodeHash) != len(handle) {
			return entities.MarketplaceConfig{}, false, domainerrors.ErrRepositoryInvariantBroke
		}
		copy(handle[:], template.CodeHash)
		config.Templates[entities.ContractType(template.ContractType)] = handle
	}
	return config, true, nil
}

func (r *Repository) PutConfig(ctx context.Context, config entities.MarketplaceConfig) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := configModel{
			ID:           configRowID,
			Owner:        string(config.Owner),
			FeeBPS:       int(config.Fee),
			MaxFeeBPS:    int(config.MaxFee),
			FeeRecipient: string(config.FeeRecipient),
			Nonce:        int64(config.Nonce),
			UpdatedAt:    now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return err
		}

		keep := make([]string, 0, len(config.Templates))
		for contractType, handle := range config.Templates {
			keep = append(keep, string(contractType))
			template := templateModel{
				ContractType: string(contractType),
				CodeHash:     append([]byte(nil), handle[:]...),
				UpdatedAt:    now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "contract_type"}},
				DoUpdates: clause.AssignmentColumns([]string{"code_hash", "updated_at"}),
			}).Create(&template).Error; err != nil {
				return err
			}
		}
		if len(keep) == 0 {
			return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&templateModel{}).Error
		}
		return tx.Where("contract_type NOT IN ?", keep).Delete(&templateModel{}).Error
	})
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

type listingModel struct {
	Collection string          `gorm:"column:collection;primaryKey"`
	TokenID    string          `gorm:"column:token_id;primaryKey"`
	Seller     string          `gorm:"column:seller"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(39,0)"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
}

func (listingModel) TableName() string {
	return "marketplace_listings"
}

func listingModelFromEntity(listing entities.Listing) listingModel {
	return listingModel{
		Collection: string(listing.Collection),
		TokenID:    string(listing.Token),
		Seller:     string(listing.Seller),
		Price:      decimal.NewFromBigInt(listing.Price, 0),
		CreatedAt:  time.Now().UTC(),
	}
}

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		Collection: entities.AccountID(m.Collection),
		Token:      entities.TokenID(m.TokenID),
		Seller:     entities.AccountID(m.Seller),
		Price:      decimalToAmount(m.Price),
	}
}

type collectionModel struct {
	Collection      string    `gorm:"column:collection;primaryKey"`
	RoyaltyReceiver string    `gorm:"column:royalty_receiver"`
	RoyaltyBPS      int       `gorm:"column:royalty_bps"`
	MetadataURI     string    `gorm:"column:metadata_uri"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (collectionModel) TableName() string {
	return "marketplace_collections"
}

func (m collectionModel) toEntity() entities.RegisteredCollection {
	return entities.RegisteredCollection{
		Collection:      entities.AccountID(m.Collection),
		RoyaltyReceiver: entities.AccountID(m.RoyaltyReceiver),
		Royalty:         entities.BasisPoints(m.RoyaltyBPS),
		MetadataURI:     m.MetadataURI,
	}
}

type configModel struct {
	ID           int       `gorm:"column:id;primaryKey"`
	Owner        string    `gorm:"column:owner"`
	FeeBPS       int       `gorm:"column:fee_bps"`
	MaxFeeBPS    int       `gorm:"column:max_fee_bps"`
	FeeRecipient string    `gorm:"column:fee_recipient"`
	Nonce        int64     `gorm:"column:nonce"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (configModel) TableName() string {
	return "marketplace_config"
}

type templateModel struct {
	ContractType string    `gorm:"column:contract_type;primaryKey"`
	CodeHash     []byte    `gorm:"column:code_hash"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (templateModel) TableName() string {
	return "marketplace_templates"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "marketplace_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

// decimalToAmount converts a NUMERIC(39,0) value back to an integer amount.
func decimalToAmount(value decimal.Decimal) *big.Int {
	return value.Truncate(0).BigInt()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
