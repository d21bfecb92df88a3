package tidal

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"
)

const pageSize = 100

type page[T any] struct {
	Limit              int `json:"limit"`
	Offset             int `json:"offset"`
	TotalNumberOfItems int `json:"totalNumberOfItems"`
	Items              []T `json:"items"`
}

// datedItem wraps entries of favorites and playlist listings, which carry the
// date the item was added alongside the item itself.
type datedItem[T any] struct {
	Created string `json:"created"`
	Item    T      `json:"item"`
}

// pages lazily yields successive pages of a listing endpoint until the server
// returns a short page. Iteration stops early on the first error.
func pages[T any](
	ctx context.Context,
	c *Client,
	base string,
	path string,
	params url.Values,
) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		timeout := time.Duration(c.conf.Timeouts.GetPaged) * time.Second
		for offset := 0; ; offset += pageSize {
			reqParams := make(url.Values, 2+len(params))
			for k, vs := range params {
				reqParams[k] = vs
			}
			reqParams.Set("limit", strconv.Itoa(pageSize))
			reqParams.Set("offset", strconv.Itoa(offset))

			resp, err := c.requestTimeout(ctx, timeout, http.MethodGet, base, path, reqParams, nil, nil)
			if nil != err {
				yield(nil, err)

				return
			}

			var pg page[T]
			if err := unmarshal(resp.Body, &pg); nil != err {
				yield(nil, err)

				return
			}

			if len(pg.Items) == 0 {
				return
			}

			if !yield(pg.Items, nil) {
				return
			}

			if len(pg.Items) < pageSize {
				return
			}
		}
	}
}

func listAll[T any](
	ctx context.Context,
	c *Client,
	base string,
	path string,
	params url.Values,
) ([]T, error) {
	var out []T
	for items, err := range pages[T](ctx, c, base, path, params) {
		if nil != err {
			return nil, err
		}

		out = append(out, items...)
	}

	return out, nil
}

// listAllDated flattens a dated listing, dropping the dateAdded envelope.
func listAllDated[T any](
	ctx context.Context,
	c *Client,
	base string,
	path string,
	params url.Values,
) ([]T, error) {
	wrapped, err := listAll[datedItem[T]](ctx, c, base, path, params)
	if nil != err {
		return nil, err
	}

	return lo.Map(wrapped, func(w datedItem[T], _ int) T { return w.Item }), nil
}

// listSlice fetches a single page at the caller-provided offset/limit.
func listSlice[T any](
	ctx context.Context,
	c *Client,
	base string,
	path string,
	params url.Values,
	limit int,
	offset int,
) ([]T, error) {
	reqParams := make(url.Values, 2+len(params))
	for k, vs := range params {
		reqParams[k] = vs
	}
	if limit > 0 {
		reqParams.Set("limit", strconv.Itoa(limit))
	}
	reqParams.Set("offset", strconv.Itoa(offset))

	timeout := time.Duration(c.conf.Timeouts.GetPaged) * time.Second
	resp, err := c.requestTimeout(ctx, timeout, http.MethodGet, base, path, reqParams, nil, nil)
	if nil != err {
		return nil, err
	}

	var pg page[T]
	if err := unmarshal(resp.Body, &pg); nil != err {
		return nil, err
	}

	return pg.Items, nil
}
