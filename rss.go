package folio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/blocks"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/meta"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Category    []string `xml:"category,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        rssGUID  `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// entryDescription is the stored summary, or the first paragraph's text.
func entryDescription(e content.Entry) string {
	if s := blocks.PlainText(e.Summary); s != "" {
		return s
	}
	return meta.Truncate(blocks.FirstParagraphText(blocks.NormalizeJSON(e.Content)), 300)
}

func (a *App) feed(collection string, entries []content.Entry) rssXML {
	base := a.Config.URL
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		link := EntryURL(base, e)
		item := rssItem{
			Title:       e.Title,
			Link:        link,
			Description: entryDescription(e),
			Category:    e.Tags,
			GUID:        rssGUID{Value: e.ID.String()},
		}
		if !e.PublishedAt.IsZero() {
			item.PubDate = e.PublishedAt.UTC().Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	title, link := a.Config.Name, BuildURL(base)+"/"
	if collection != "" {
		title = a.Config.Name + " - " + collectionTitle(collection)
		link = BuildURL(base, collection)
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       title,
			Link:        link,
			Description: a.Config.Description,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, collection string, entries []content.Entry) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(a.feed(collection, entries))
}
