package storage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/okian/propensity/internal/adapters/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileStore(t *testing.T) {
	Convey("Given a directory with a dataset", t, func() {
		dir := t.TempDir()
		So(os.MkdirAll(filepath.Join(dir, "models"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "data.csv"), []byte("age;y\n30;yes\n"), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "models", "m.json"), []byte(`{}`), 0o600), ShouldBeNil)

		store, err := storage.NewFileStore(dir, storage.WithMaxBytes(64))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When fetching existing keys", func() {
			data, err := store.Fetch(ctx, "data.csv")
			nested, nestedErr := store.Fetch(ctx, "models/m.json")

			Convey("Then the bytes are returned", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "age;y\n30;yes\n")
				So(nestedErr, ShouldBeNil)
				So(string(nested), ShouldEqual, "{}")
			})
		})

		Convey("When the key is missing", func() {
			_, err := store.Fetch(ctx, "nope.csv")
			So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the key tries to leave the root", func() {
			for _, key := range []string{"../etc/passwd", "/etc/passwd", "", "models/../../x"} {
				_, err := store.Fetch(ctx, key)
				So(errors.Is(err, storage.ErrInvalidKey), ShouldBeTrue)
			}
		})

		Convey("When the object is over the limit", func() {
			So(os.WriteFile(filepath.Join(dir, "big.bin"), []byte(strings.Repeat("x", 65)), 0o600), ShouldBeNil)
			_, err := store.Fetch(ctx, "big.bin")
			So(errors.Is(err, storage.ErrTooLarge), ShouldBeTrue)
		})
	})

	Convey("Given a missing directory", t, func() {
		_, err := storage.NewFileStore(filepath.Join(t.TempDir(), "absent"))
		So(err, ShouldNotBeNil)
	})
}

func fakeS3(objects map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, body)
	}))
}

func TestS3Store(t *testing.T) {
	Convey("Given an S3-compatible endpoint", t, func() {
		srv := fakeS3(map[string]string{
			"/marketing/bank_marketing_cleaned_v1.csv": "age;y\n30;yes\n",
			"/marketing/huge.bin":                      strings.Repeat("x", 128),
		})
		defer srv.Close()

		ctx := context.Background()
		store, err := storage.NewS3Store(ctx, "marketing",
			storage.WithEndpoint(srv.URL),
			storage.WithStaticCredentials("AKIAEXAMPLE", "secret"),
			storage.WithMaxBytes(100),
		)
		So(err, ShouldBeNil)

		Convey("When fetching an existing object", func() {
			data, err := store.Fetch(ctx, "bank_marketing_cleaned_v1.csv")

			Convey("Then path-style addressing reaches the bucket", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "age;y\n30;yes\n")
			})
		})

		Convey("When the object does not exist", func() {
			_, err := store.Fetch(ctx, "model.json")
			So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the object is over the limit", func() {
			_, err := store.Fetch(ctx, "huge.bin")
			So(errors.Is(err, storage.ErrTooLarge), ShouldBeTrue)
		})
	})

	Convey("Given a client returning typed errors", t, func() {
		store := storage.NewS3StoreWithClient(stubClient{err: &types.NoSuchKey{}}, "b")
		_, err := store.Fetch(context.Background(), "k")
		So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)

		store = storage.NewS3StoreWithClient(stubClient{err: errors.New("access denied")}, "b")
		_, err = store.Fetch(context.Background(), "k")
		So(errors.Is(err, storage.ErrNotFound), ShouldBeFalse)
		So(err.Error(), ShouldContainSubstring, "access denied")
	})

	Convey("Given no bucket", t, func() {
		_, err := storage.NewS3Store(context.Background(), "")
		So(errors.Is(err, storage.ErrInvalidKey), ShouldBeTrue)
	})
}

type stubClient struct {
	err error
}

func (c stubClient) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, c.err
}
