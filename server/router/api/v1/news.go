package v1

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/edusphere/edusphere/store"
)

const newsFeedLimit = 20

type newsResponse struct {
	ID        int32  `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	CreatedTs int64  `json:"createdTs"`
}

// listNews returns the latest platform news.
func (s *APIV1Service) listNews(c echo.Context) error {
	limit := newsFeedLimit
	items, err := s.Store.ListNews(c.Request().Context(), &store.FindNews{Limit: &limit})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]newsResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newsResponse{
			ID:        item.ID,
			Title:     item.Title,
			Summary:   item.Summary,
			Link:      item.Link,
			CreatedTs: item.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// newsFeed serves the platform news as RSS.
func (s *APIV1Service) newsFeed(c echo.Context) error {
	limit := newsFeedLimit
	items, err := s.Store.ListNews(c.Request().Context(), &store.FindNews{Limit: &limit})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	feed := &feeds.Feed{
		Title:       "Actualités Edusphere",
		Link:        &feeds.Link{Href: "/api/v1/news"},
		Description: "Dernières actualités de la plateforme Edusphere",
		Created:     time.Now(),
	}
	for _, item := range items {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          item.Link,
			Title:       item.Title,
			Description: item.Summary,
			Link:        &feeds.Link{Href: item.Link},
			Created:     time.Unix(item.CreatedTs, 0),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "application/rss+xml", []byte(rss))
}
