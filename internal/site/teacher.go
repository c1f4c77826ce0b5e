package site

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ghaggin/growtech/internal/catalog"
	"github.com/ghaggin/growtech/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tabVideos = "videos"
	tabLive   = "live"
)

type teacherData struct {
	Catalog catalog.Catalog
	Revenue decimal.Decimal
	Tab     string
}

func (s *Server) teacherPage(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab != tabLive {
		tab = tabVideos
	}

	c := s.catalogs.Get(r.Context())
	s.render(w, r, http.StatusOK, "teacher.html", &Page{
		Title: "Teacher",
		Data: teacherData{
			Catalog: c,
			Revenue: c.TotalRevenue(),
			Tab:     tab,
		},
	})
}

func (s *Server) tooLarge(w http.ResponseWriter, r *http.Request) {
	s.notices.Add(r.Context(), session.Notice{
		Title:       "Upload failed",
		Description: "The video file is too large.",
		Variant:     session.VariantDestructive,
	})
	http.Redirect(w, r, "/teacher?tab=videos", http.StatusSeeOther)
}

func (s *Server) addVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := s.cfg.Teacher.MaxUploadBytes

	// The body is capped by limitUploads. The CSRF middleware may already
	// have parsed it.
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				s.tooLarge(w, r)
				return
			}
			s.log.Debug("unreadable video form", zap.Error(err))
			http.Redirect(w, r, "/teacher?tab=videos", http.StatusSeeOther)
			return
		}
	}

	in := catalog.VideoInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Pricing:     catalog.Pricing(r.FormValue("pricing")),
		Price:       r.FormValue("price"),
	}

	var data []byte
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > limit {
			s.tooLarge(w, r)
			return
		}
		data, err = io.ReadAll(file)
		if err != nil {
			s.serverError(w, err)
			return
		}
		in.File = &catalog.FileMeta{
			Name: header.Filename,
			Size: header.Size,
			Type: header.Header.Get("Content-Type"),
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		s.log.Debug("unreadable video file", zap.Error(err))
	}

	var (
		v  catalog.Video
		ok bool
	)
	s.catalogs.Update(ctx, func(c *catalog.Catalog) {
		v, ok = c.AddVideo(in)
	})
	if !ok {
		s.log.Debug("incomplete video ignored",
			zap.Bool("has_title", in.Title != ""),
			zap.Bool("has_file", in.File != nil),
			zap.String("pricing", string(in.Pricing)),
		)
		http.Redirect(w, r, "/teacher?tab=videos", http.StatusSeeOther)
		return
	}

	cached := s.previews.Put(v.ID, catalog.Preview{
		Name: v.FileName,
		Type: v.FileType,
		Data: data,
	})
	if !cached {
		s.log.Warn("video too large for preview cache", zap.String("video_id", v.ID))
	}

	s.log.Info("video added", zap.String("video_id", v.ID), zap.Int64("size", v.FileSize))
	http.Redirect(w, r, "/teacher?tab=videos", http.StatusSeeOther)
}

// visitorZone reads the browser's getTimezoneOffset, in minutes west of UTC.
func visitorZone(raw string) *time.Location {
	mins, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || mins < -14*60 || mins > 14*60 {
		return time.Local
	}
	return time.FixedZone("", -mins*60)
}

func (s *Server) scheduleClass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in := catalog.ClassInput{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		StartsAt: r.PostFormValue("startsAt"),
		JoinURL:  strings.TrimSpace(r.PostFormValue("joinUrl")),
	}

	loc := visitorZone(r.PostFormValue("tz_offset"))

	var (
		lc catalog.LiveClass
		ok bool
	)
	s.catalogs.Update(ctx, func(c *catalog.Catalog) {
		lc, ok = c.ScheduleClass(in, loc)
	})
	if !ok {
		s.log.Debug("incomplete class ignored", zap.String("starts_at", in.StartsAt))
		http.Redirect(w, r, "/teacher?tab=live", http.StatusSeeOther)
		return
	}

	s.log.Info("class scheduled", zap.String("class_id", lc.ID), zap.Time("starts_at", lc.StartsAt))
	http.Redirect(w, r, "/teacher?tab=live", http.StatusSeeOther)
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c := s.catalogs.Get(r.Context())
	if _, ok := c.Video(id); !ok {
		s.notFound(w, r)
		return
	}
	pv, ok := s.previews.Get(id)
	if !ok {
		s.notFound(w, r)
		return
	}

	if pv.Type != "" && !strings.Contains(pv.Type, "*") {
		w.Header().Set("Content-Type", pv.Type)
	}
	http.ServeContent(w, r, pv.Name, pv.ModTime, bytes.NewReader(pv.Data))
}
