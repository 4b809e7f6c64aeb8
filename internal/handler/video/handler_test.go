package video

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	videomodel "lychee/internal/model/video"
	"lychee/internal/pkg/backend"
	videosvc "lychee/internal/service/video"
	"lychee/internal/store"
)

// stubVideoService 测试用服务桩，按字段注入各方法的返回值
type stubVideoService struct {
	submitID    string
	submitErr   error
	progress    *videomodel.JobProgress
	progressErr error
	backend     videomodel.VideoBackend
	result      *videomodel.VideoResult
	resultErr   error
	jobs        []videomodel.JobProgress
	available   []string
	models      map[string][]backend.ModelInfo
	modelsErr   error
	testResult  videosvc.TestResult
	testPrompt  string // 记录收到的测试提示词
	download    *videosvc.Download
	downloadErr error
}

func (s *stubVideoService) SubmitJob(_ context.Context, req *videomodel.GenerateVideoRequest) (string, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.submitID, s.submitErr
}

func (s *stubVideoService) JobProgress(string) (*videomodel.JobProgress, error) {
	return s.progress, s.progressErr
}

func (s *stubVideoService) JobBackend(string) (videomodel.VideoBackend, error) {
	return s.backend, nil
}

func (s *stubVideoService) JobResult(string) (*videomodel.VideoResult, error) {
	return s.result, s.resultErr
}

func (s *stubVideoService) ListJobs() []videomodel.JobProgress {
	return s.jobs
}

func (s *stubVideoService) Backends() (map[string]bool, []string) {
	avail := make(map[string]bool, len(s.available))
	for _, name := range s.available {
		avail[name] = true
	}
	return avail, s.available
}

func (s *stubVideoService) AvailableBackends() []string {
	return s.available
}

func (s *stubVideoService) Models(context.Context) (map[string][]backend.ModelInfo, error) {
	return s.models, s.modelsErr
}

func (s *stubVideoService) TestBackend(_ context.Context, name videomodel.VideoBackend, prompt string) videosvc.TestResult {
	s.testPrompt = prompt
	result := s.testResult
	result.Backend = name.String()
	return result
}

func (s *stubVideoService) DownloadVideo(context.Context, string) (*videosvc.Download, error) {
	return s.download, s.downloadErr
}

func (s *stubVideoService) ActiveJobs() int {
	return len(s.jobs)
}

func (s *stubVideoService) Close() error {
	return nil
}

// newTestRouter 挂载视频路由的测试引擎
func newTestRouter(svc videosvc.VideoService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	hdl := NewHandler(svc)
	videos := engine.Group("/api/v1/videos")
	{
		videos.POST("/generate", hdl.Generate)
		videos.GET("/jobs", hdl.ListJobs)
		videos.GET("/jobs/:job_id", hdl.GetJob)
		videos.GET("/jobs/:job_id/result", hdl.GetResult)
		videos.GET("/backends", hdl.ListBackends)
		videos.GET("/models", hdl.ListModels)
		videos.POST("/backends/:backend/test", hdl.TestBackend)
		videos.GET("/download/:job_id", hdl.Download)
	}
	return engine
}

func perform(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader = bytes.NewReader(nil)
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parseEnvelope(w *httptest.ResponseRecorder) envelope {
	var resp envelope
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func TestHandler_Generate(t *testing.T) {
	Convey("Generate 提交视频生成任务", t, func() {
		svc := &stubVideoService{submitID: "job-123"}
		engine := newTestRouter(svc)

		Convey("合法请求返回任务ID", func() {
			w := perform(engine, http.MethodPost, "/api/v1/videos/generate", map[string]any{
				"prompt": "a cat in space",
			})
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 0)

			var data GenerateResponseData
			So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
			So(data.JobID, ShouldEqual, "job-123")
			So(data.Status, ShouldEqual, "started")
			So(data.Message, ShouldContainSubstring, "backend")
			So(data.EstimatedTime, ShouldNotBeEmpty)
		})

		Convey("请求体不是 JSON 返回 40001", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/generate", strings.NewReader("not json"))
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(parseEnvelope(w).Code, ShouldEqual, 40001)
		})

		Convey("缺少 prompt 返回 40001", func() {
			w := perform(engine, http.MethodPost, "/api/v1/videos/generate", map[string]any{})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(parseEnvelope(w).Code, ShouldEqual, 40001)
		})

		Convey("参数校验失败返回 40002", func() {
			w := perform(engine, http.MethodPost, "/api/v1/videos/generate", map[string]any{
				"prompt":   "x",
				"duration": 999,
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(parseEnvelope(w).Code, ShouldEqual, 40002)
		})

		Convey("任务ID冲突返回 50001", func() {
			svc.submitErr = store.ErrJobExists
			w := perform(engine, http.MethodPost, "/api/v1/videos/generate", map[string]any{
				"prompt": "a cat in space",
			})
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(parseEnvelope(w).Code, ShouldEqual, 50001)
		})
	})
}

func TestHandler_GetJob(t *testing.T) {
	Convey("GetJob 查询任务进度", t, func() {
		now := time.Now()
		svc := &stubVideoService{
			progress: &videomodel.JobProgress{
				JobID:       "job-123",
				Status:      videomodel.JobStatusEditing,
				Progress:    80,
				CurrentStep: "Editing and combining video segments",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			backend: videomodel.VideoBackendAuto,
		}
		engine := newTestRouter(svc)

		Convey("存在的任务返回进度信息", func() {
			w := perform(engine, http.MethodGet, "/api/v1/videos/jobs/job-123", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 0)

			var data JobStatusInfo
			So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
			So(data.JobID, ShouldEqual, "job-123")
			So(data.Status, ShouldEqual, "editing")
			So(data.Progress, ShouldEqual, 80)
			So(data.CurrentStep, ShouldEqual, "Editing and combining video segments")
			So(data.Backend, ShouldEqual, "auto")
		})

		Convey("不存在的任务返回 40401", func() {
			svc.progress = nil
			svc.progressErr = store.ErrJobNotFound

			w := perform(engine, http.MethodGet, "/api/v1/videos/jobs/missing", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(parseEnvelope(w).Code, ShouldEqual, 40401)
		})
	})
}

func TestHandler_GetResult(t *testing.T) {
	Convey("GetResult 查询任务结果", t, func() {
		svc := &stubVideoService{
			result: &videomodel.VideoResult{
				JobID:       "job-123",
				VideoURL:    "http://localhost:7080/static/videos/job-123/final_video.mp4",
				Duration:    30.5,
				FileSize:    1024,
				BackendUsed: "pollo",
				Metadata:    map[string]any{"script_segments": 3},
				CreatedAt:   time.Now(),
			},
		}
		engine := newTestRouter(svc)

		Convey("已完成的任务返回结果", func() {
			w := perform(engine, http.MethodGet, "/api/v1/videos/jobs/job-123/result", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 0)

			var data VideoResultInfo
			So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
			So(data.JobID, ShouldEqual, "job-123")
			So(data.VideoURL, ShouldContainSubstring, "final_video.mp4")
			So(data.Duration, ShouldEqual, 30.5)
			So(data.BackendUsed, ShouldEqual, "pollo")
		})

		Convey("未完成的任务返回 40003 并带当前状态", func() {
			svc.result = nil
			svc.resultErr = videosvc.ErrJobNotCompleted
			svc.progress = &videomodel.JobProgress{
				JobID:  "job-123",
				Status: videomodel.JobStatusVideoGen,
			}

			w := perform(engine, http.MethodGet, "/api/v1/videos/jobs/job-123/result", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 40003)
			So(resp.Message, ShouldContainSubstring, "video_generating")
		})

		Convey("任务不存在返回 40401", func() {
			svc.result = nil
			svc.resultErr = store.ErrJobNotFound

			w := perform(engine, http.MethodGet, "/api/v1/videos/jobs/missing/result", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(parseEnvelope(w).Code, ShouldEqual, 40401)
		})

		Convey("结果缺失返回 40402", func() {
			svc.result = nil
			svc.resultErr = videosvc.ErrResultNotFound

			w := perform(engine, http.MethodGet, "/api/v1/videos/jobs/job-123/result", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(parseEnvelope(w).Code, ShouldEqual, 40402)
		})
	})
}

func TestHandler_ListJobs(t *testing.T) {
	Convey("ListJobs 列出全部任务", t, func() {
		svc := &stubVideoService{
			jobs: []videomodel.JobProgress{
				{JobID: "job-1", Status: videomodel.JobStatusCompleted, Progress: 100},
				{JobID: "job-2", Status: videomodel.JobStatusPending},
			},
		}
		engine := newTestRouter(svc)

		w := perform(engine, http.MethodGet, "/api/v1/videos/jobs", nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		resp := parseEnvelope(w)
		So(resp.Code, ShouldEqual, 0)

		var data ListJobsResponseData
		So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
		So(data.Total, ShouldEqual, 2)
		So(len(data.Jobs), ShouldEqual, 2)
	})
}

func TestHandler_ListBackends(t *testing.T) {
	Convey("ListBackends 列出可用后端", t, func() {
		svc := &stubVideoService{available: []string{"pollo", "ark"}}
		engine := newTestRouter(svc)

		w := perform(engine, http.MethodGet, "/api/v1/videos/backends", nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		resp := parseEnvelope(w)
		So(resp.Code, ShouldEqual, 0)

		var data ListBackendsResponseData
		So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
		So(data.AvailableBackends, ShouldResemble, []string{"pollo", "ark"})
		So(data.Default, ShouldEqual, "auto")
		So(data.Descriptions["auto"], ShouldContainSubstring, "Automatic")
	})
}

func TestHandler_ListModels(t *testing.T) {
	Convey("ListModels 列出各后端模型", t, func() {
		svc := &stubVideoService{
			models: map[string][]backend.ModelInfo{
				"pollo": {{ID: "veo-3", Name: "Veo 3", Backend: "pollo"}},
				"ark":   {{ID: "doubao-seedance-1-0-pro-250528", Name: "Doubao Seedance Pro", Backend: "ark"}},
			},
		}
		engine := newTestRouter(svc)

		Convey("正常返回模型目录", func() {
			w := perform(engine, http.MethodGet, "/api/v1/videos/models", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 0)

			var data ListModelsResponseData
			So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
			So(data.TotalBackends, ShouldEqual, 2)
			So(len(data.Models["pollo"]), ShouldEqual, 1)
		})

		Convey("查询失败返回 50001", func() {
			svc.models = nil
			svc.modelsErr = io.ErrUnexpectedEOF

			w := perform(engine, http.MethodGet, "/api/v1/videos/models", nil)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(parseEnvelope(w).Code, ShouldEqual, 50001)
		})
	})
}

func TestHandler_TestBackend(t *testing.T) {
	Convey("TestBackend 后端冒烟测试", t, func() {
		svc := &stubVideoService{
			testResult: videosvc.TestResult{
				Success:     true,
				VideoURL:    "https://mock-video-storage.com/video_segment_0.mp4",
				BackendUsed: "pollo",
			},
		}
		engine := newTestRouter(svc)

		Convey("合法后端返回测试结果", func() {
			w := perform(engine, http.MethodPost, "/api/v1/videos/backends/pollo/test", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 0)

			var data videosvc.TestResult
			So(json.Unmarshal(resp.Data, &data), ShouldBeNil)
			So(data.Backend, ShouldEqual, "pollo")
			So(data.Success, ShouldBeTrue)

			Convey("未指定 prompt 时使用默认提示词", func() {
				So(svc.testPrompt, ShouldEqual, defaultTestPrompt)
			})
		})

		Convey("query 中的 prompt 透传给服务", func() {
			w := perform(engine, http.MethodPost, "/api/v1/videos/backends/ark/test?prompt=A+bird", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.testPrompt, ShouldEqual, "A bird")
		})

		Convey("未知后端返回 40002", func() {
			w := perform(engine, http.MethodPost, "/api/v1/videos/backends/sora/test", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(parseEnvelope(w).Code, ShouldEqual, 40002)
		})
	})
}

func TestHandler_Download(t *testing.T) {
	Convey("Download 下载成片", t, func() {
		engine := func(svc videosvc.VideoService) *gin.Engine { return newTestRouter(svc) }

		Convey("本地成片直接回流文件内容", func() {
			svc := &stubVideoService{
				download: &videosvc.Download{
					Reader:   io.NopCloser(strings.NewReader("video bytes")),
					Size:     11,
					Filename: "video_job-123.mp4",
				},
			}
			w := perform(engine(svc), http.MethodGet, "/api/v1/videos/download/job-123", nil)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "video/mp4")
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "video_job-123.mp4")
			So(w.Body.String(), ShouldEqual, "video bytes")
		})

		Convey("远端成片返回跳转地址", func() {
			svc := &stubVideoService{
				download: &videosvc.Download{
					RemoteURL: "https://bucket.oss-cn-beijing.aliyuncs.com/videos/job-123/final_video.mp4",
				},
			}
			w := perform(engine(svc), http.MethodGet, "/api/v1/videos/download/job-123", nil)

			So(w.Code, ShouldEqual, http.StatusOK)

			var data struct {
				VideoURL string `json:"video_url"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &data), ShouldBeNil)
			So(data.VideoURL, ShouldContainSubstring, "aliyuncs.com")
		})

		Convey("任务不存在返回 40401", func() {
			svc := &stubVideoService{downloadErr: store.ErrJobNotFound}
			w := perform(engine(svc), http.MethodGet, "/api/v1/videos/download/missing", nil)

			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(parseEnvelope(w).Code, ShouldEqual, 40401)
		})

		Convey("成片未就绪返回 Video not ready", func() {
			svc := &stubVideoService{downloadErr: videosvc.ErrJobNotCompleted}
			w := perform(engine(svc), http.MethodGet, "/api/v1/videos/download/job-123", nil)

			So(w.Code, ShouldEqual, http.StatusNotFound)

			resp := parseEnvelope(w)
			So(resp.Code, ShouldEqual, 40402)
			So(resp.Message, ShouldEqual, "Video not ready")
		})
	})
}
