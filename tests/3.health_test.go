// Package tests 健康检查接口集成测试
//
// 运行测试：
//
//	go test ./tests -run TestHealth -v
package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// TestHealthEndpoints 测试健康检查和就绪检查
func TestHealthEndpoints(t *testing.T) {
	Convey("健康检查接口测试", t, func() {
		Convey("/health 返回服务状态", func() {
			w := doJSON(t, http.MethodGet, "/health", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			var data struct {
				Status            string   `json:"status"`
				Timestamp         string   `json:"timestamp"`
				Version           string   `json:"version"`
				BackendsAvailable int      `json:"backends_available"`
				Backends          []string `json:"backends"`
				ActiveJobs        int      `json:"active_jobs"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &data), ShouldBeNil)

			So(data.Status, ShouldEqual, "healthy")
			So(data.Version, ShouldEqual, "2.0.0")
			So(data.Timestamp, ShouldNotBeEmpty)
			So(data.BackendsAvailable, ShouldBeGreaterThan, 0)
			So(len(data.Backends), ShouldEqual, data.BackendsAvailable)
			So(data.ActiveJobs, ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("/ready 返回就绪状态", func() {
			w := doJSON(t, http.MethodGet, "/ready", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			var data struct {
				Status string `json:"status"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &data), ShouldBeNil)
			So(data.Status, ShouldEqual, "ready")
		})
	})
}
