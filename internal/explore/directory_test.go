package explore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mabarin/mabarin-web/internal/model"
)

func TestDirectoryLoad(t *testing.T) {
	src := &mockDirectory{}
	src.On("Categories", mock.Anything).Return([]model.SportCategory{{ID: 1, Name: "Futsal"}}, nil)
	src.On("Provinces", mock.Anything).Return([]model.Province{{ID: 12, Name: "Jawa Barat"}}, nil)

	d := NewDirectory(src, quietLogger())
	d.Load(context.Background())

	o := d.Options()
	assert.Len(t, o.Categories, 1)
	assert.Len(t, o.Provinces, 1)
	assert.Empty(t, o.Cities)
	src.AssertExpectations(t)
}

func TestDirectoryFailureLeavesListEmpty(t *testing.T) {
	src := &mockDirectory{}
	src.On("Categories", mock.Anything).Return(nil, errors.New("boom"))
	src.On("Provinces", mock.Anything).Return([]model.Province{{ID: 12}}, nil)

	d := NewDirectory(src, quietLogger())
	d.Load(context.Background())

	o := d.Options()
	assert.Empty(t, o.Categories)
	assert.Len(t, o.Provinces, 1)
}

func TestSelectProvinceLoadsCitiesOnce(t *testing.T) {
	src := &mockDirectory{}
	src.On("Cities", mock.Anything, int64(12)).Return([]model.City{{ID: 120, Name: "Bandung"}}, nil).Once()
	src.On("Cities", mock.Anything, int64(7)).Return([]model.City{{ID: 70, Name: "Semarang"}}, nil).Once()

	d := NewDirectory(src, quietLogger())
	d.SelectProvince(context.Background(), 12)
	assert.Equal(t, "Bandung", d.Options().Cities[0].Name)
	src.AssertNumberOfCalls(t, "Cities", 1)

	d.SelectProvince(context.Background(), 7)
	o := d.Options()
	assert.EqualValues(t, 7, o.ProvinceID)
	assert.Len(t, o.Cities, 1)
	assert.Equal(t, "Semarang", o.Cities[0].Name)
	src.AssertExpectations(t)
}

func TestClearingProvinceSkipsNetwork(t *testing.T) {
	src := &mockDirectory{}
	src.On("Cities", mock.Anything, int64(12)).Return([]model.City{{ID: 120}}, nil).Once()

	d := NewDirectory(src, quietLogger())
	d.SelectProvince(context.Background(), 12)
	d.SelectProvince(context.Background(), 0)

	assert.Empty(t, d.Options().Cities)
	src.AssertNumberOfCalls(t, "Cities", 1)
}

func TestCitiesFailureLeavesListEmpty(t *testing.T) {
	src := &mockDirectory{}
	src.On("Cities", mock.Anything, int64(3)).Return(nil, errors.New("timeout"))

	d := NewDirectory(src, quietLogger())
	d.SelectProvince(context.Background(), 3)
	assert.Empty(t, d.Options().Cities)
}
