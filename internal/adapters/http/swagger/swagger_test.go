package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/leaguedesk/internal/adapters/http/swagger"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerRoutes(t *testing.T) {
	convey.Convey("Given the docs routes", t, func() {
		mux := http.NewServeMux()
		swagger.Register(context.Background(), mux)
		ts := httptest.NewServer(mux)
		defer ts.Close()

		convey.Convey("When fetching the docs page", func() {
			resp, err := http.Get(ts.URL + "/api-docs")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(resp.Header.Get("Content-Type"), convey.ShouldContainSubstring, "text/html")
		})

		convey.Convey("When fetching the spec", func() {
			resp, err := http.Get(ts.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(resp.Header.Get("Content-Type"), convey.ShouldContainSubstring, "yaml")
		})

		convey.Convey("Then the embedded spec is non-empty", func() {
			convey.So(len(swagger.OpenAPI), convey.ShouldBeGreaterThan, 0)
		})
	})
}
