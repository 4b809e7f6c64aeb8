// Package tests 视频后端管理接口集成测试
//
// 运行测试：
//
//	go test ./tests -run TestBackendEndpoints -v
//
// 说明：
//   - 未配置任何 API Key 时后端列表返回全部后端（此时生成走模拟适配器）
package tests

import (
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// TestBackendEndpoints_List 测试后端列表接口
func TestBackendEndpoints_List(t *testing.T) {
	Convey("后端列表接口测试", t, func() {
		w := doJSON(t, http.MethodGet, "/api/v1/videos/backends", nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		resp := decodeEnvelope(t, w)
		So(resp.Code, ShouldEqual, 0)

		var data struct {
			AvailableBackends []string          `json:"available_backends"`
			Default           string            `json:"default"`
			Descriptions      map[string]string `json:"descriptions"`
		}
		decodeData(t, resp, &data)

		So(len(data.AvailableBackends), ShouldBeGreaterThan, 0)
		So(data.Default, ShouldEqual, "auto")
		So(data.Descriptions, ShouldContainKey, "auto")
		So(data.Descriptions, ShouldContainKey, "pollo")
		So(data.Descriptions, ShouldContainKey, "imagineart")
		So(data.Descriptions, ShouldContainKey, "ark")
	})
}

// TestBackendEndpoints_Models 测试模型目录接口
func TestBackendEndpoints_Models(t *testing.T) {
	Convey("模型目录接口测试", t, func() {
		w := doJSON(t, http.MethodGet, "/api/v1/videos/models", nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		resp := decodeEnvelope(t, w)
		So(resp.Code, ShouldEqual, 0)

		var data struct {
			Models map[string][]struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Backend string `json:"backend"`
			} `json:"models"`
			TotalBackends int      `json:"total_backends"`
			Backends      []string `json:"backends"`
		}
		decodeData(t, resp, &data)

		So(data.TotalBackends, ShouldEqual, 3)
		So(len(data.Backends), ShouldEqual, 3)
		So(data.Models, ShouldContainKey, "pollo")
		So(data.Models, ShouldContainKey, "imagineart")
		So(data.Models, ShouldContainKey, "ark")

		Convey("每个后端的模型都带有所属后端标识", func() {
			for name, models := range data.Models {
				So(len(models), ShouldBeGreaterThan, 0)
				for _, m := range models {
					So(m.ID, ShouldNotBeEmpty)
					So(m.Backend, ShouldEqual, name)
				}
			}
		})
	})
}

// TestBackendEndpoints_TestBackend 测试后端连通性测试接口
func TestBackendEndpoints_TestBackend(t *testing.T) {
	Convey("后端连通性测试接口", t, func() {
		Convey("测试 pollo 后端（模拟模式下应成功）", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/backends/pollo/test", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 0)

			var data struct {
				Backend     string `json:"backend"`
				Success     bool   `json:"success"`
				VideoURL    string `json:"video_url"`
				BackendUsed string `json:"backend_used"`
			}
			decodeData(t, resp, &data)

			So(data.Backend, ShouldEqual, "pollo")
			So(data.Success, ShouldBeTrue)
			So(data.VideoURL, ShouldNotBeEmpty)
		})

		Convey("自定义测试提示词", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/backends/ark/test?prompt=A+bird+in+flight", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 0)
		})

		Convey("auto 走自动选择逻辑", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/backends/auto/test", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 0)

			var data struct {
				Success bool `json:"success"`
			}
			decodeData(t, resp, &data)
			So(data.Success, ShouldBeTrue)
		})

		Convey("未知后端返回 400", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/backends/sora/test", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 40002)
		})
	})
}
