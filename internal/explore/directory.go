package explore

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/model"
)

// DirectorySource serves the reference lists behind the filter selects.
type DirectorySource interface {
	Categories(ctx context.Context) ([]model.SportCategory, error)
	Provinces(ctx context.Context) ([]model.Province, error)
	Cities(ctx context.Context, provinceID int64) ([]model.City, error)
}

// Options are the choices offered by the filter selects.
type Options struct {
	Categories []model.SportCategory `json:"categories"`
	Provinces  []model.Province      `json:"provinces"`
	Cities     []model.City          `json:"cities"`
	ProvinceID int64                 `json:"province_id,omitempty"`
}

// Directory loads Options.  A failed lookup is logged and leaves its list
// empty; the selects then simply show no choices.
type Directory struct {
	src DirectorySource
	log echo.Logger

	mu      sync.Mutex
	opts    Options
	cityGen uint64
}

func NewDirectory(src DirectorySource, log echo.Logger) *Directory {
	return &Directory{src: src, log: log}
}

// Load fetches categories and provinces in parallel.
func (d *Directory) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cats, err := d.src.Categories(ctx)
		if err != nil {
			d.log.Errorf("directory: categories: %v", err)
			cats = nil
		}
		d.mu.Lock()
		d.opts.Categories = cats
		d.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		provs, err := d.src.Provinces(ctx)
		if err != nil {
			d.log.Errorf("directory: provinces: %v", err)
			provs = nil
		}
		d.mu.Lock()
		d.opts.Provinces = provs
		d.mu.Unlock()
	}()
	wg.Wait()
}

// SelectProvince loads the cities of id.  Zero clears the list without a
// lookup.  If another province is selected while a lookup is in flight, the
// older answer is dropped.
func (d *Directory) SelectProvince(ctx context.Context, id int64) {
	d.mu.Lock()
	d.cityGen++
	gen := d.cityGen
	d.opts.ProvinceID = id
	d.opts.Cities = nil
	d.mu.Unlock()

	if id <= 0 {
		return
	}
	cities, err := d.src.Cities(ctx, id)
	if err != nil {
		d.log.Errorf("directory: cities of province %d: %v", id, err)
		cities = nil
	}
	d.mu.Lock()
	if gen == d.cityGen {
		d.opts.Cities = cities
	}
	d.mu.Unlock()
}

// Options returns a copy of the current lists.
func (d *Directory) Options() Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	o := d.opts
	o.Categories = append([]model.SportCategory(nil), o.Categories...)
	o.Provinces = append([]model.Province(nil), o.Provinces...)
	o.Cities = append([]model.City(nil), o.Cities...)
	return o
}
