package mabarin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mabarin/mabarin-web/internal/model"
)

func (c *Client) Categories(ctx context.Context) ([]model.SportCategory, error) {
	return fetchList[model.SportCategory](ctx, c, call{method: http.MethodGet, path: "/sport-categories"})
}

func (c *Client) Provinces(ctx context.Context) ([]model.Province, error) {
	return fetchList[model.Province](ctx, c, call{method: http.MethodGet, path: "/location/provinces"})
}

func (c *Client) Cities(ctx context.Context, provinceID int64) ([]model.City, error) {
	path := "/location/cities/" + strconv.FormatInt(provinceID, 10)
	return fetchList[model.City](ctx, c, call{method: http.MethodGet, path: path})
}

func (c *Client) PaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return fetchList[model.PaymentMethod](ctx, c, call{method: http.MethodGet, path: "/payment-methods"})
}
