package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"people/internal/person/models"
	dErrors "people/pkg/domain-errors"
)

// parsePageable reads page, size and sort. Sizes above the maximum are
// clamped.
func (h *Handler) parsePageable(params url.Values) (models.Pageable, error) {
	pageable := models.Pageable{Size: h.defaultPageSize}

	if raw := params.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return models.Pageable{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid page %q", raw))
		}
		pageable.Page = page
	}
	if raw := params.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return models.Pageable{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid size %q", raw))
		}
		pageable.Size = size
	}
	if pageable.Size > h.maxPageSize {
		pageable.Size = h.maxPageSize
	}

	sort, err := models.ParseSort(params["sort"])
	if err != nil {
		return models.Pageable{}, err
	}
	pageable.Sort = sort

	if err := pageable.Validate(); err != nil {
		return models.Pageable{}, err
	}
	return pageable, nil
}

// setPaginationHeaders writes X-Total-Count and an RFC 5988 Link header
// whose URLs keep every other query parameter of the request.
func setPaginationHeaders(w http.ResponseWriter, u *url.URL, page models.Page) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.TotalElements, 10))

	last := page.TotalPages() - 1
	var links []string
	if page.HasNext() {
		links = append(links, pageLink(u, page.Number+1, page.Size, "next"))
	}
	if page.HasPrevious() {
		links = append(links, pageLink(u, page.Number-1, page.Size, "prev"))
	}
	links = append(links,
		pageLink(u, last, page.Size, "last"),
		pageLink(u, 0, page.Size, "first"),
	)
	w.Header().Set("Link", strings.Join(links, ","))
}

func pageLink(u *url.URL, number, size int, rel string) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	q.Set("size", strconv.Itoa(size))
	target := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return fmt.Sprintf(`<%s>; rel="%s"`, target.String(), rel)
}
