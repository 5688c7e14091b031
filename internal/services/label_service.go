package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
	"github.com/tiendapos/backend/internal/store"
)

const labelCacheTTL = time.Hour

// LabelService renders printable QR labels for product barcodes. Rendered
// labels are cached in Redis keyed by product ID and version; the service
// works without Redis (nil client) by rendering on every call.
type LabelService struct {
	products store.ProductRepository
	redis    *redis.Client
}

func NewLabelService(products store.ProductRepository, redisClient *redis.Client) *LabelService {
	return &LabelService{
		products: products,
		redis:    redisClient,
	}
}

// RenderLabel returns a base64-encoded PNG QR code for the product's
// barcode, suitable for shelf labels.
func (s *LabelService) RenderLabel(ctx context.Context, productID string) (string, error) {
	p, err := s.products.LoadProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return "", ErrProductNotFound
		}
		return "", &PersistenceError{Op: "load product", Err: err}
	}

	key := fmt.Sprintf("label:%s:%d", p.ID, p.Version)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			return cached, nil
		}
	}

	qr, err := qrcode.New(p.Barcode, qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", err
	}
	label := base64.StdEncoding.EncodeToString(buf.Bytes())

	if s.redis != nil {
		s.redis.Set(ctx, key, label, labelCacheTTL)
	}

	return label, nil
}
