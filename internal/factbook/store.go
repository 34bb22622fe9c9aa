package factbook

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"regexp"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const pageDataFile = "page-data.json"

// Page locations relative to the data directory.
const (
	CountryListPath = "countries"
	CountryCodePath = "references/country-data-codes"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Store reads generated page-data files and keeps decoded pages in memory
// for ttl. Concurrent misses for the same page share one read.
type Store struct {
	fsys   fs.FS
	cache  *cache.Cache[any]
	group  singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(fsys fs.FS, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fsys:   fsys,
		cache:  cache.New[any](time.Minute),
		ttl:    ttl,
		logger: logger,
	}
}

// NewDirStore serves pages from dir on the local filesystem.
func NewDirStore(dir string, ttl time.Duration, logger *zap.Logger) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: errors.New("not a directory")}
	}
	return NewStore(os.DirFS(dir), ttl, logger), nil
}

func (s *Store) Close() {
	s.cache.Stop()
}

func (s *Store) CountryList(ctx context.Context) (*PageData[CountryListData], error) {
	return load[CountryListData](ctx, s, CountryListPath)
}

func (s *Store) CountryCodes(ctx context.Context) (*PageData[CountryCodeData], error) {
	return load[CountryCodeData](ctx, s, CountryCodePath)
}

// Country loads the page for slug, e.g. "france" or "korea-south".
func (s *Store) Country(ctx context.Context, slug string) (*PageData[CountryData], error) {
	if !slugPattern.MatchString(slug) {
		return nil, apperrors.NewValidationError("slug", "must be lower-case letters, digits and dashes")
	}
	return load[CountryData](ctx, s, path.Join(CountryListPath, slug))
}

func load[T any](ctx context.Context, s *Store, dir string) (*PageData[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := constants.CacheKeyFactbook + dir
	if v, ok := s.cache.Get(key); ok {
		if page, ok := v.(*PageData[T]); ok {
			return page, nil
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		page, err := readPage[T](s.fsys, dir)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, page, s.ttl)
		return page, nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrPageNotFound) {
			s.logger.Error("Failed to load page data",
				zap.String("path", dir),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Debug("Page data loaded",
		zap.String("path", dir),
		zap.Bool("shared", shared),
	)
	return v.(*PageData[T]), nil
}

func readPage[T any](fsys fs.FS, dir string) (*PageData[T], error) {
	raw, err := fs.ReadFile(fsys, path.Join(dir, pageDataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrPageNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	var page PageData[T]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return &page, nil
}
