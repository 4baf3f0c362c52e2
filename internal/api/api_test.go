package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"

	"shopadmin/internal/assets"
	"shopadmin/internal/db"
	"shopadmin/internal/model"
	"shopadmin/internal/store"
)

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	assetStore, err := assets.New(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("assets.New: %v", err)
	}
	server := httptest.NewServer(NewRouter(database, assetStore))
	t.Cleanup(server.Close)
	return server, database
}

func createCategory(t *testing.T, database *sql.DB, name string) *model.Category {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), database, name)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return cat
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 100, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

// productForm builds a multipart product write request body. Each image
// is attached under "images" with the given content type.
type productForm struct {
	fields map[string]string
	images []formImage
}

type formImage struct {
	mime string
	data []byte
}

func (f productForm) encode(t *testing.T) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range f.fields {
		writer.WriteField(key, value)
	}
	for i, img := range f.images {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="upload-%d.jpg"`, i))
		header.Set("Content-Type", img.mime)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("creating form part: %v", err)
		}
		part.Write(img.data)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func lampFields(categoryID int64) map[string]string {
	return map[string]string{
		"name":        "Lamp",
		"description": "Desk lamp",
		"price":       "19.99",
		"stock":       "5",
		"category":    fmt.Sprintf("%d", categoryID),
	}
}

func postProduct(t *testing.T, serverURL string, form productForm) *http.Response {
	t.Helper()
	body, contentType := form.encode(t)
	resp, err := http.Post(serverURL+"/products", contentType, body)
	if err != nil {
		t.Fatalf("POST /products: %v", err)
	}
	return resp
}

func putProduct(t *testing.T, serverURL string, id int64, form productForm) *http.Response {
	t.Helper()
	body, contentType := form.encode(t)
	req, _ := http.NewRequest("PUT", fmt.Sprintf("%s/products/%d", serverURL, id), body)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /products: %v", err)
	}
	return resp
}

func decodeProduct(t *testing.T, resp *http.Response) model.Product {
	t.Helper()
	defer resp.Body.Close()
	var p model.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decoding product: %v", err)
	}
	return p
}

func TestCreateProductWithImage(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	resp := postProduct(t, server.URL, productForm{
		fields: lampFields(cat.ID),
		images: []formImage{{mime: "image/jpeg", data: testJPEG(t, 1200, 800)}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	product := decodeProduct(t, resp)

	if product.Name != "Lamp" || product.Stock != 5 {
		t.Errorf("unexpected product: %+v", product)
	}
	if len(product.ImageRefs) != 1 {
		t.Fatalf("expected exactly 1 image ref, got %d", len(product.ImageRefs))
	}

	// The stored file is served statically and is a resized JPEG.
	imgResp, err := http.Get(server.URL + product.ImageRefs[0])
	if err != nil {
		t.Fatalf("GET stored image: %v", err)
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for stored image, got %d", imgResp.StatusCode)
	}
	img, format, err := image.Decode(imgResp.Body)
	if err != nil {
		t.Fatalf("decoding stored image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected JPEG, got %s", format)
	}
	if img.Bounds().Dx() > 600 || img.Bounds().Dy() > 400 {
		t.Errorf("expected resized to fit 600x400, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCreateProductMissingFields(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	fields := lampFields(cat.ID)
	delete(fields, "price")
	resp := postProduct(t, server.URL, productForm{fields: fields})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing field, got %d", resp.StatusCode)
	}
}

func TestCreateProductRejectsNonImage(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	resp := postProduct(t, server.URL, productForm{
		fields: lampFields(cat.ID),
		images: []formImage{{mime: "text/plain", data: []byte("not an image")}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["kind"] != "INVALID_MEDIA_TYPE" {
		t.Errorf("expected INVALID_MEDIA_TYPE kind, got %q", body["kind"])
	}
}

func TestGetProductPlaceholder(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	resp := postProduct(t, server.URL, productForm{fields: lampFields(cat.ID)})
	created := decodeProduct(t, resp)

	getResp, err := http.Get(fmt.Sprintf("%s/products/%d", server.URL, created.ID))
	if err != nil {
		t.Fatalf("GET /products/{id}: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}
	product := decodeProduct(t, getResp)
	if len(product.ImageRefs) != 1 || product.ImageRefs[0] != assets.Placeholder {
		t.Errorf("expected placeholder ref for imageless product, got %v", product.ImageRefs)
	}
}

func TestGetProductInvalidAndMissing(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/products/not-a-number")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(server.URL + "/products/9999")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing product, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateProductImages(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	resp := postProduct(t, server.URL, productForm{
		fields: lampFields(cat.ID),
		images: []formImage{
			{mime: "image/jpeg", data: testJPEG(t, 100, 100)},
			{mime: "image/jpeg", data: testJPEG(t, 100, 100)},
		},
	})
	created := decodeProduct(t, resp)
	if len(created.ImageRefs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(created.ImageRefs))
	}

	fields := lampFields(cat.ID)
	fields["deletedImages"] = created.ImageRefs[0]
	updResp := putProduct(t, server.URL, created.ID, productForm{
		fields: fields,
		images: []formImage{{mime: "image/jpeg", data: testJPEG(t, 100, 100)}},
	})
	if updResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", updResp.StatusCode)
	}
	updated := decodeProduct(t, updResp)

	if len(updated.ImageRefs) != 2 {
		t.Fatalf("expected 2 refs after edit, got %d", len(updated.ImageRefs))
	}
	if updated.ImageRefs[0] != created.ImageRefs[1] {
		t.Errorf("expected untouched ref to stay first, got %v", updated.ImageRefs)
	}
}

func TestDeleteProduct(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	resp := postProduct(t, server.URL, productForm{fields: lampFields(cat.ID)})
	created := decodeProduct(t, resp)

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("%s/products/%d", server.URL, created.ID), nil)
	delResp, _ := http.DefaultClient.Do(req)
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", delResp.StatusCode)
	}
	delResp.Body.Close()

	// Gone now.
	delResp, _ = http.DefaultClient.Do(req)
	if delResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", delResp.StatusCode)
	}
	delResp.Body.Close()
}

func filterProducts(t *testing.T, serverURL string, params url.Values) (*http.Response, []model.Product) {
	t.Helper()
	resp, err := http.Get(serverURL + "/products/filter?" + params.Encode())
	if err != nil {
		t.Fatalf("GET /products/filter: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()
	var products []model.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decoding filter response: %v", err)
	}
	return resp, products
}

func TestFilterUnknownCategoryIsEmptySuccess(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")
	postProduct(t, server.URL, productForm{fields: lampFields(cat.ID)}).Body.Close()

	resp, products := filterProducts(t, server.URL, url.Values{"categories": {"Nonexistent"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for unknown category, got %d", resp.StatusCode)
	}
	if len(products) != 0 {
		t.Errorf("expected empty result, got %d products", len(products))
	}
}

func TestFilterPartialCategoryResolution(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")
	postProduct(t, server.URL, productForm{fields: lampFields(cat.ID)}).Body.Close()

	resp, products := filterProducts(t, server.URL, url.Values{"categories": {"Lighting, Nonexistent"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(products) != 1 {
		t.Errorf("expected the resolved subset to match, got %d products", len(products))
	}
}

func TestFilterValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, params := range []url.Values{
		{"min": {"abc"}},
		{"max": {"12,50"}},
		{"sort": {"sideways"}},
	} {
		resp, _ := http.Get(server.URL + "/products/filter?" + params.Encode())
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("params %v: expected 400, got %d", params, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestFilterPriceAndSort(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	for _, price := range []string{"10.00", "30.00", "50.00"} {
		fields := lampFields(cat.ID)
		fields["name"] = "Lamp " + price
		fields["price"] = price
		postProduct(t, server.URL, productForm{fields: fields}).Body.Close()
	}

	resp, products := filterProducts(t, server.URL, url.Values{
		"min":  {"15"},
		"max":  {"60"},
		"sort": {"desc"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Price.LessThan(products[1].Price) {
		t.Errorf("expected descending price order, got %s then %s", products[0].Price, products[1].Price)
	}
	// Placeholder normalization applies on the filter path too.
	for _, p := range products {
		if len(p.ImageRefs) != 1 || p.ImageRefs[0] != assets.Placeholder {
			t.Errorf("product %q: expected placeholder ref, got %v", p.Name, p.ImageRefs)
		}
	}
}

func TestFilterSearch(t *testing.T) {
	server, database := setupTestServer(t)
	cat := createCategory(t, database, "Lighting")

	fields := lampFields(cat.ID)
	fields["name"] = "Reading Light"
	fields["description"] = "clip-on lamp for books"
	postProduct(t, server.URL, productForm{fields: fields}).Body.Close()

	other := lampFields(cat.ID)
	other["name"] = "Candle"
	other["description"] = "wax, no electricity"
	postProduct(t, server.URL, productForm{fields: other}).Body.Close()

	resp, products := filterProducts(t, server.URL, url.Values{"search": {"LAMP"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(products) != 1 || products[0].Name != "Reading Light" {
		t.Errorf("expected the description match only, got %+v", products)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"name": "Lighting"})
	resp, _ := http.Post(server.URL+"/categories", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var cat model.Category
	json.NewDecoder(resp.Body).Decode(&cat)
	resp.Body.Close()

	// Duplicate name is a conflict.
	resp, _ = http.Post(server.URL+"/categories", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate name, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Delete is denied while a product references the category.
	postProduct(t, server.URL, productForm{fields: lampFields(cat.ID)}).Body.Close()
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("%s/categories/%d", server.URL, cat.ID), nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for category in use, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAnnouncementEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"title":   "Sale",
		"header":  "Big sale",
		"content": "Half off lamps",
		"color":   "#ff0000",
		"visible": true,
	})
	resp, _ := http.Post(server.URL+"/announcements", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing fields rejected.
	bad, _ := json.Marshal(map[string]string{"title": "No header"})
	resp, _ = http.Post(server.URL+"/announcements", "application/json", bytes.NewReader(bad))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete announcement, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/announcements?visible=true")
	if err != nil {
		t.Fatalf("GET /announcements: %v", err)
	}
	var announcements []model.Announcement
	json.NewDecoder(resp.Body).Decode(&announcements)
	resp.Body.Close()
	if len(announcements) != 1 {
		t.Errorf("expected 1 visible announcement, got %d", len(announcements))
	}
}
