// Package catalog holds a teacher's videos and live classes for the life of
// their session. Nothing here is persisted or sent to the API.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Pricing string

const (
	Free Pricing = "free"
	Paid Pricing = "paid"
)

const defaultFileType = "video/*"

// datetime-local form value
const localTimeLayout = "2006-01-02T15:04"

var (
	timeNow = time.Now
	newID   = uuid.NewString
)

type Video struct {
	ID          string
	Title       string
	Description string
	FileName    string
	FileSize    int64
	FileType    string
	PreviewURL  string
	Pricing     Pricing
	Price       decimal.Decimal
	CreatedAt   time.Time
}

func (v Video) SizeMB() string {
	return decimal.NewFromInt(v.FileSize).Div(decimal.NewFromInt(1 << 20)).StringFixed(2)
}

type LiveClass struct {
	ID        string
	Title     string
	StartsAt  time.Time
	JoinURL   string
	CreatedAt time.Time
}

type FileMeta struct {
	Name string
	Size int64
	Type string
}

type VideoInput struct {
	Title       string
	Description string
	File        *FileMeta
	Pricing     Pricing
	// Price is the raw form value; it only matters for paid videos.
	Price string
}

type ClassInput struct {
	Title    string
	StartsAt string
	JoinURL  string
}

// Catalog lists are ordered most recent first.
type Catalog struct {
	Videos  []Video
	Classes []LiveClass
}

// AddVideo prepends a video built from in. Incomplete input is ignored and
// reported only through ok.
func (c *Catalog) AddVideo(in VideoInput) (v Video, ok bool) {
	if in.Title == "" || in.File == nil {
		return Video{}, false
	}

	price := decimal.Zero
	switch in.Pricing {
	case Free:
	case Paid:
		raw := strings.TrimSpace(in.Price)
		if raw == "" {
			return Video{}, false
		}
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return Video{}, false
		}
		price = p
	default:
		return Video{}, false
	}

	fileType := in.File.Type
	if fileType == "" {
		fileType = defaultFileType
	}

	id := newID()
	v = Video{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		FileName:    in.File.Name,
		FileSize:    in.File.Size,
		FileType:    fileType,
		PreviewURL:  "/teacher/videos/" + id + "/preview",
		Pricing:     in.Pricing,
		Price:       price,
		CreatedAt:   timeNow().UTC(),
	}

	c.Videos = append([]Video{v}, c.Videos...)
	return v, true
}

// ScheduleClass prepends a live class. StartsAt is either a datetime-local
// value, read in loc, or RFC 3339.
func (c *Catalog) ScheduleClass(in ClassInput, loc *time.Location) (LiveClass, bool) {
	if in.Title == "" || in.StartsAt == "" || in.JoinURL == "" {
		return LiveClass{}, false
	}

	startsAt, err := parseStart(in.StartsAt, loc)
	if err != nil {
		return LiveClass{}, false
	}

	lc := LiveClass{
		ID:        newID(),
		Title:     in.Title,
		StartsAt:  startsAt.UTC(),
		JoinURL:   in.JoinURL,
		CreatedAt: timeNow().UTC(),
	}

	c.Classes = append([]LiveClass{lc}, c.Classes...)
	return lc, true
}

func parseStart(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(localTimeLayout, s, loc)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// TotalRevenue sums the price of every paid video.
func (c *Catalog) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c.Videos {
		if v.Pricing == Paid {
			total = total.Add(v.Price)
		}
	}
	return total
}

func (c *Catalog) Video(id string) (Video, bool) {
	for _, v := range c.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return Video{}, false
}

func (c *Catalog) clone() Catalog {
	return Catalog{
		Videos:  append([]Video(nil), c.Videos...),
		Classes: append([]LiveClass(nil), c.Classes...),
	}
}

func (c *Catalog) VideoIDs() []string {
	ids := make([]string, 0, len(c.Videos))
	for _, v := range c.Videos {
		ids = append(ids, v.ID)
	}
	return ids
}
