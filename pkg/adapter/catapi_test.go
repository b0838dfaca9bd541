package adapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/whisker/pkg/adapter"
	"github.com/m-mizutani/whisker/pkg/model"
)

const breedsJSON = `[
  {
    "id": "abys",
    "name": "Abyssinian",
    "origin": "Egypt",
    "temperament": "Active, Energetic, Independent, Intelligent, Gentle",
    "life_span": "14 - 15",
    "description": "The Abyssinian is easy to care for.",
    "weight": {"imperial": "7  -  10", "metric": "3 - 5"}
  },
  {
    "id": "beng",
    "name": "Bengal",
    "origin": "United States",
    "temperament": "Alert, Agile, Energetic, Demanding, Intelligent",
    "life_span": "12 - 15",
    "description": "Bengals are a lot of fun to live with.",
    "weight": {"imperial": "6 - 12", "metric": "3 - 7"}
  }
]`

func TestListBreeds(t *testing.T) {
	var gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(breedsJSON))
	}))
	defer server.Close()

	client := adapter.NewCatAPI("test-key", adapter.WithBaseURL(server.URL))
	breeds, err := client.ListBreeds(context.Background())
	gt.NoError(t, err)

	gt.Equal(t, gotKey, "test-key")
	gt.Equal(t, gotPath, "/breeds")
	gt.A(t, breeds).Length(2)
	gt.Equal(t, breeds[0].ID, model.BreedID("abys"))
	gt.Equal(t, breeds[0].Origin, "Egypt")
	gt.Equal(t, breeds[0].LifeSpan, "14 - 15")
	gt.Equal(t, breeds[0].Weight.Metric, "3 - 5")
	gt.Equal(t, breeds[1].Name, "Bengal")
}

func TestListBreedsWithoutAPIKey(t *testing.T) {
	var hasKey bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKey = r.Header["X-Api-Key"]
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := adapter.NewCatAPI("", adapter.WithBaseURL(server.URL))
	breeds, err := client.ListBreeds(context.Background())
	gt.NoError(t, err)
	gt.A(t, breeds).Length(0)
	gt.False(t, hasKey)
}

func TestListBreedsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	client := adapter.NewCatAPI("bad", adapter.WithBaseURL(server.URL))
	_, err := client.ListBreeds(context.Background())
	gt.Error(t, err)

	var apiErr *model.APIError
	gt.True(t, errors.As(err, &apiErr))
	gt.Equal(t, apiErr.StatusCode, http.StatusUnauthorized)
	gt.S(t, apiErr.Body).Contains("invalid api key")
}

func TestListBreedsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	}))
	defer server.Close()

	client := adapter.NewCatAPI("key", adapter.WithBaseURL(server.URL))
	_, err := client.ListBreeds(context.Background())
	gt.Error(t, err)
}

func TestSearchImages(t *testing.T) {
	var gotBreed, gotLimit, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBreed = r.URL.Query().Get("breed_ids")
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "O3btzLlsO", "url": "https://cdn2.thecatapi.com/images/O3btzLlsO.png", "width": 1100, "height": 739},
		})
	}))
	defer server.Close()

	client := adapter.NewCatAPI("key", adapter.WithBaseURL(server.URL+"/"))
	images, err := client.SearchImages(context.Background(), "beng", 1)
	gt.NoError(t, err)

	gt.Equal(t, gotPath, "/images/search")
	gt.Equal(t, gotBreed, "beng")
	gt.Equal(t, gotLimit, "1")
	gt.A(t, images).Length(1)
	gt.Equal(t, images[0].URL, "https://cdn2.thecatapi.com/images/O3btzLlsO.png")
	gt.Equal(t, images[0].Width, 1100)
}

func TestSearchImagesEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := adapter.NewCatAPI("key", adapter.WithBaseURL(server.URL))
	images, err := client.SearchImages(context.Background(), "abys", 1)
	gt.NoError(t, err)
	gt.A(t, images).Length(0)
}

func TestSearchImagesRequiresBreedID(t *testing.T) {
	client := adapter.NewCatAPI("key", adapter.WithBaseURL("http://127.0.0.1:0"))
	_, err := client.SearchImages(context.Background(), "", 1)
	gt.Error(t, err)
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := adapter.NewCatAPI("key",
		adapter.WithBaseURL(server.URL),
		adapter.WithTimeout(50*time.Millisecond),
	)

	start := time.Now()
	_, err := client.SearchImages(context.Background(), "abys", 1)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, context.DeadlineExceeded))
	gt.True(t, time.Since(start) < 5*time.Second)
}
