package product

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ShopAPI/internal/upload"
	"ShopAPI/pkg/kit"
)

const (
	imageField = "imageUrl"

	defaultMaxUploadBytes = 10 << 20
	// multipart parts beyond this are spooled to temp files
	maxMemoryBytes = 1 << 20
)

var errMissingField = errors.New("missing form field")

type Server struct {
	Store   Store
	Uploads upload.Storage
	Log     *zap.Logger

	MaxUploadBytes int64
	// Created counts successful creations; nil disables it.
	Created prometheus.Counter
}

// Routes is the product route table. The literal /filter is registered ahead
// of /{id}; chi also ranks static segments above parameters, so "filter" is
// never parsed as an id.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/filter", s.filter)
	r.Post("/", s.create)
	r.Get("/{id}", s.get)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) filter(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid filter", map[string]any{"cause": err.Error()})
		return
	}

	products, err := s.Store.Filter(r.Context(), f)
	if err != nil {
		s.serverError(w, r, "filter products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteText(w, http.StatusNotFound, "Product not found")
		return
	}

	p, err := s.Store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		kit.WriteText(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		s.serverError(w, r, "get product failed", err, zap.Int("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "upload too large", map[string]any{"max_bytes": maxBytes})
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "bad multipart form", map[string]any{"cause": err.Error()})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in, err := parseCreateForm(r.MultipartForm)
	if errors.Is(err, ErrValidation) {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{"cause": err.Error()})
		return
	}
	if err != nil {
		s.serverError(w, r, "parse product form failed", err)
		return
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		s.serverError(w, r, "read uploaded file failed", fmt.Errorf("%s: %w", imageField, err))
		return
	}
	defer func() { _ = file.Close() }()

	ref, err := s.Uploads.Save(r.Context(), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.serverError(w, r, "store uploaded file failed", err)
		return
	}
	in.ImageURL = ref

	p, err := s.Store.Add(r.Context(), in)
	if err != nil {
		s.serverError(w, r, "add product failed", err)
		return
	}

	if s.Created != nil {
		s.Created.Inc()
	}
	if s.Log != nil {
		s.Log.Info("product created", zap.Int("id", p.ID), zap.String("image", p.ImageURL))
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Error(msg, append(fields, zap.Error(err))...)
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

// parseCreateForm reads name, price and sizes. A missing field is a server
// error for the request; an unparsable price is ErrValidation.
func parseCreateForm(form *multipart.Form) (NewProduct, error) {
	name, err := formValue(form, "name")
	if err != nil {
		return NewProduct{}, err
	}
	rawPrice, err := formValue(form, "price")
	if err != nil {
		return NewProduct{}, err
	}
	rawSizes, err := formValue(form, "sizes")
	if err != nil {
		return NewProduct{}, err
	}

	price, err := parsePrice(rawPrice)
	if err != nil {
		return NewProduct{}, fmt.Errorf("price: %w", err)
	}

	return NewProduct{
		Name:  name,
		Price: price,
		Sizes: strings.Split(rawSizes, ","),
	}, nil
}

func formValue(form *multipart.Form, key string) (string, error) {
	vs := form.Value[key]
	if len(vs) == 0 {
		return "", fmt.Errorf("%w: %s", errMissingField, key)
	}
	return vs[0], nil
}

func parsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrValidation, raw)
	}
	return v, nil
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var f Filter

	if raw := q.Get("minPrice"); raw != "" {
		v, err := parsePrice(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("minPrice: %w", err)
		}
		f.MinPrice = &v
	}
	if raw := q.Get("maxPrice"); raw != "" {
		v, err := parsePrice(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("maxPrice: %w", err)
		}
		f.MaxPrice = &v
	}
	if c := q.Get("category"); c != "" {
		f.Category = &c
	}
	return f, nil
}
