package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	atomNamespace   = "http://www.w3.org/2005/Atom"
)

// Element order inside channel and item follows what podcast directories
// index most reliably: channel metadata first, then items newest-first.
type rssEnvelope struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string        `xml:"title"`
	Link          string        `xml:"link"`
	Description   string        `xml:"description"`
	Language      string        `xml:"language"`
	LastBuildDate string        `xml:"lastBuildDate"`
	AtomLink      rssAtomLink   `xml:"atom:link"`
	Author        string        `xml:"itunes:author"`
	Summary       string        `xml:"itunes:summary"`
	Category      rssCategory   `xml:"itunes:category"`
	Explicit      string        `xml:"itunes:explicit"`
	Items         []rssItemElem `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssCategory struct {
	Text string `xml:"text,attr"`
}

type rssItemElem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Enclosure   rssEnclosure `xml:"enclosure"`
	GUID        rssGUID      `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Episode     string       `xml:"itunes:episode"`
	Duration    string       `xml:"itunes:duration"`
	Explicit    string       `xml:"itunes:explicit"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length string `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Encode renders the document as an RSS 2.0 byte stream with the XML
// declaration prepended.
func Encode(doc *Document) ([]byte, error) {
	envelope := rssEnvelope{
		Version:  "2.0",
		ITunesNS: itunesNamespace,
		AtomNS:   atomNamespace,
		Channel: rssChannel{
			Title:         doc.Channel.Title,
			Link:          doc.Channel.Link,
			Description:   doc.Channel.Description,
			Language:      doc.Channel.Language,
			LastBuildDate: doc.Channel.LastBuildDate.Format(time.RFC1123Z),
			AtomLink: rssAtomLink{
				Href: doc.Channel.SelfLink,
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Author:   doc.Channel.Author,
			Summary:  doc.Channel.Description,
			Category: rssCategory{Text: doc.Channel.Category},
			Explicit: strconv.FormatBool(doc.Channel.Explicit),
		},
	}
	for _, ep := range doc.Episodes {
		envelope.Channel.Items = append(envelope.Channel.Items, rssItemElem{
			Title:       ep.Title,
			Description: ep.Description,
			Enclosure: rssEnclosure{
				URL:    ep.MediaURL,
				Length: strconv.FormatInt(ep.MediaSizeBytes, 10),
				Type:   "audio/mpeg",
			},
			GUID:     rssGUID{IsPermaLink: "false", Value: ep.GUID},
			PubDate:  ep.PublishedAt.Format(time.RFC1123Z),
			Episode:  strconv.Itoa(ep.Number),
			Duration: strconv.Itoa(ep.DurationSeconds),
			Explicit: strconv.FormatBool(doc.Channel.Explicit),
		})
	}

	body, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Decoding uses a second set of shapes because namespaced elements arrive
// with their full namespace URI, not the prefix the encoder writes.
type parsedEnvelope struct {
	XMLName xml.Name      `xml:"rss"`
	Channel parsedChannel `xml:"channel"`
}

type parsedChannel struct {
	Title         string         `xml:"title"`
	Description   string         `xml:"description"`
	Language      string         `xml:"language"`
	LastBuildDate string         `xml:"lastBuildDate"`
	Links         []parsedLink   `xml:"link"`
	Author        string         `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd author"`
	Category      parsedCategory `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd category"`
	Explicit      string         `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
	Items         []parsedItem   `xml:"item"`
}

// parsedLink covers both the plain channel link and the Atom self link,
// which share a local name and differ only by namespace.
type parsedLink struct {
	XMLName xml.Name
	Href    string `xml:"href,attr"`
	Value   string `xml:",chardata"`
}

type parsedCategory struct {
	Text string `xml:"text,attr"`
}

type parsedItem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Enclosure   rssEnclosure `xml:"enclosure"`
	GUID        rssGUID      `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Episode     string       `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd episode"`
	Duration    string       `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd duration"`
}

// Decode parses an RSS 2.0 byte stream back into a document. Item fields
// that fail to parse degrade to zero values rather than failing the whole
// document; only malformed XML is an error.
func Decode(data []byte) (*Document, error) {
	var envelope parsedEnvelope
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	ch := envelope.Channel
	doc := &Document{
		Channel: Channel{
			Title:       ch.Title,
			Description: ch.Description,
			Language:    ch.Language,
			Author:      ch.Author,
			Category:    ch.Category.Text,
			Explicit:    ch.Explicit == "true",
		},
	}
	if t, ok := parseFeedTime(ch.LastBuildDate); ok {
		doc.Channel.LastBuildDate = t
	}
	for _, link := range ch.Links {
		switch link.XMLName.Space {
		case atomNamespace:
			doc.Channel.SelfLink = link.Href
		default:
			if v := strings.TrimSpace(link.Value); v != "" {
				doc.Channel.Link = v
			}
		}
	}

	for _, item := range ch.Items {
		ep := Episode{
			Title:         item.Title,
			Description:   item.Description,
			MediaURL:      item.Enclosure.URL,
			MediaFilename: mediaFilename(item.Enclosure.URL),
			GUID:          strings.TrimSpace(item.GUID.Value),
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(item.Enclosure.Length), 10, 64); err == nil {
			ep.MediaSizeBytes = n
		}
		if t, ok := parseFeedTime(item.PubDate); ok {
			ep.PublishedAt = t
		}
		ep.Number = parseEpisodeNumber(item.Episode, ep.GUID)
		ep.DurationSeconds = parseDurationSeconds(item.Duration)
		doc.Episodes = append(doc.Episodes, ep)
	}
	return doc, nil
}

func mediaFilename(mediaURL string) string {
	parsed, err := url.Parse(mediaURL)
	if err != nil || parsed.Path == "" {
		return path.Base(mediaURL)
	}
	return path.Base(parsed.Path)
}

func parseFeedTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseEpisodeNumber(episodeTag, guid string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(episodeTag)); err == nil && n > 0 {
		return n
	}
	if n, _, ok := ParseGUID(guid); ok {
		return n
	}
	return 0
}

// parseDurationSeconds accepts plain seconds plus the MM:SS and HH:MM:SS
// clock forms older feeds carry.
func parseDurationSeconds(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
