package directus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sudhanshu2024/Client-portfolio/blog/domain"
)

const (
	// collection is the content collection holding blog posts.
	collection = "Blog"

	// listLimit caps a single list fetch. The site has nowhere near this many
	// posts; the cap exists so a misbehaving store cannot flood us.
	listLimit = 50

	defaultTimeout = 10 * time.Second
)

// listFields enumerates exactly the fields the site needs, including the
// thumbnail sub-field. Requesting whole records would couple us to every
// future schema change in the store.
var listFields = []string{
	"id",
	"title",
	"slug",
	"preview",
	"body",
	"date_published",
	"status",
	"tags",
	"thumbnail.id",
}

// Client is a read-only adapter for a Directus-style content API. It
// implements domain.ContentSource.
type Client struct {
	baseURL            string
	token              string
	defaultThumbnailID string
	httpClient         *http.Client
}

// NewClient creates a Client for the content API at baseURL. token may be
// empty for public collections. defaultThumbnailID names the asset used when
// a post has no thumbnail.
func NewClient(baseURL string, token string, defaultThumbnailID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		token:              token,
		defaultThumbnailID: defaultThumbnailID,
		httpClient:         &http.Client{Timeout: timeout},
	}
}

// rawPost mirrors the wire shape of a content record. Thumbnail and tags are
// left as raw JSON because the store is inconsistent about their shapes; they
// are normalized before a domain.Post is built.
type rawPost struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Preview       string          `json:"preview"`
	Body          string          `json:"body"`
	DatePublished string          `json:"date_published"`
	Status        string          `json:"status"`
	Tags          json.RawMessage `json:"tags"`
	Thumbnail     json.RawMessage `json:"thumbnail"`
}

type itemsResponse struct {
	Data []rawPost `json:"data"`
}

// ListPosts fetches published posts, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	params := url.Values{}
	params.Set("fields", strings.Join(listFields, ","))
	params.Set("sort", "-date_published")
	params.Set("filter", `{"status":{"_eq":"published"}}`)
	params.Set("limit", fmt.Sprint(listLimit))

	raw, err := c.fetchItems(ctx, params)
	if err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(raw))
	for _, r := range raw {
		p := c.normalize(r)
		if !p.Published() {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// GetPost fetches a single published post by slug. Missing and unpublished
// records both yield domain.ErrPostNotFound.
func (c *Client) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("directus: empty slug: %w", domain.ErrPostNotFound)
	}

	filter, err := json.Marshal(map[string]any{
		"_and": []map[string]any{
			{"slug": map[string]string{"_eq": slug}},
			{"status": map[string]string{"_eq": domain.StatusPublished}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("directus: building filter for slug %s: %w", slug, err)
	}

	params := url.Values{}
	params.Set("fields", strings.Join(listFields, ","))
	params.Set("filter", string(filter))
	params.Set("limit", "1")

	raw, err := c.fetchItems(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrPostNotFound
	}

	p := c.normalize(raw[0])
	if !p.Published() {
		return nil, domain.ErrPostNotFound
	}
	return &p, nil
}

// AssetURL builds the absolute URL for a stored file id.
func (c *Client) AssetURL(fileID string) string {
	return c.baseURL + "/assets/" + fileID
}

func (c *Client) fetchItems(ctx context.Context, params url.Values) ([]rawPost, error) {
	op := fmt.Sprintf("fetching items from %s", collection)

	endpoint := fmt.Sprintf("%s/items/%s?%s", c.baseURL, collection, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("directus: %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directus: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("directus: %s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("directus: %s: decoding response: %w", op, err)
	}
	return items.Data, nil
}

// normalize converts a raw wire record into the canonical post shape. It is
// total: any record the store hands back produces a usable Post.
func (c *Client) normalize(r rawPost) domain.Post {
	return domain.Post{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Preview:       r.Preview,
		Body:          r.Body,
		Thumbnail:     c.processThumbnail(r.Thumbnail),
		DatePublished: parseDate(r.DatePublished),
		Status:        r.Status,
		Tags:          parseTags(r.Tags),
	}
}

// parseDate accepts the timestamp formats Directus emits. An unparseable or
// empty value yields nil rather than an error; a post without a date still
// renders.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseTags tolerates the tag field being absent, null, or a non-array value.
// Anything that is not a JSON string array becomes an empty list.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
