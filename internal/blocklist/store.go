package blocklist

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/logging"
	"github.com/velotir/starship_registry/internal/models"
)

// Store is the revocation list over the token_blocklist table. Rows are only
// ever inserted and (once their token has expired anyway) pruned.
type Store struct {
	DB *gorm.DB
}

// Revoke records jti as revoked. Inserting the same jti twice is harmless:
// Contains answers the same either way.
func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	rec := models.TokenBlocklist{
		JTI:       jti,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	return s.DB.WithContext(ctx).Create(&rec).Error
}

func (s *Store) Contains(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.TokenBlocklist{}).
		Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneExpired removes rows whose token is past its own expiry. Those tokens
// fail the expiry check before the blocklist is ever consulted, so dropping
// their rows cannot re-admit anything.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.TokenBlocklist{})
	return res.RowsAffected, res.Error
}

func (s *Store) Sweep(ctx context.Context, every time.Duration) {
	l := logging.FromContext(ctx).With("svc", "blocklist.sweep")
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PruneExpired(ctx)
			if err != nil {
				l.Error("prune_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("pruned", "removed", n)
			}
		}
	}
}
