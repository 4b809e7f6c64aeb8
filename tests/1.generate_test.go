// Package tests 视频生成流水线集成测试
//
// 运行测试：
//
//	go test ./tests -run TestVideoGeneration_FullPipeline -v
//
// 说明：
//   - 未配置任何 API Key 时走模拟后端，流水线仍会完整经过
//     脚本生成、配音、视频片段、剪辑合成、发布五个阶段
//   - ffmpeg 缺失时合成阶段降级为占位文件，任务仍到达 completed
package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"lychee/internal/model/video"
)

// TestVideoGeneration_FullPipeline 测试从提交到成片的完整流程
func TestVideoGeneration_FullPipeline(t *testing.T) {
	Convey("完整视频生成流程测试", t, func() {
		// 步骤1: 提交生成任务
		jobID := submitJob(t, map[string]any{
			"prompt":   "A cat exploring a space station",
			"style":    "cinematic",
			"duration": 30,
		})
		So(jobID, ShouldNotBeEmpty)

		Convey("步骤2: 任务可立即查询且从初始状态出发", func() {
			p := getJobStatus(t, jobID)
			So(p.JobID, ShouldEqual, jobID)
			So(p.Status.Terminal() || p.Status == video.JobStatusPending ||
				p.Progress >= 0, ShouldBeTrue)

			Convey("步骤3: 任务最终到达 completed", func() {
				final := waitForTerminal(t, jobID, 90*time.Second)
				So(final.Status, ShouldEqual, video.JobStatusCompleted)
				So(final.Progress, ShouldEqual, 100)
				So(final.CurrentStep, ShouldEqual, "Video generation completed successfully")
				So(final.ErrorMessage, ShouldBeEmpty)

				Convey("步骤4: 查询生成结果", func() {
					w := doJSON(t, http.MethodGet, "/api/v1/videos/jobs/"+jobID+"/result", nil)
					So(w.Code, ShouldEqual, http.StatusOK)

					var result struct {
						JobID       string         `json:"job_id"`
						VideoURL    string         `json:"video_url"`
						Duration    float64        `json:"duration"`
						BackendUsed string         `json:"backend_used"`
						Metadata    map[string]any `json:"metadata"`
					}
					decodeData(t, decodeEnvelope(t, w), &result)

					So(result.JobID, ShouldEqual, jobID)
					So(result.VideoURL, ShouldNotBeEmpty)
					So(result.Duration, ShouldBeGreaterThan, 0)
					So(result.BackendUsed, ShouldNotBeEmpty)

					// 验证结果元数据
					So(result.Metadata, ShouldContainKey, "script_segments")
					So(result.Metadata, ShouldContainKey, "video_segments")
					So(result.Metadata, ShouldContainKey, "voice_segments")
					So(result.Metadata, ShouldContainKey, "style")
					So(result.Metadata["style"], ShouldEqual, "cinematic")

					Convey("步骤5: 下载成片", func() {
						w := doJSON(t, http.MethodGet, "/api/v1/videos/download/"+jobID, nil)
						So(w.Code, ShouldEqual, http.StatusOK)

						contentType := w.Header().Get("Content-Type")
						if contentType == "video/mp4" {
							// 本地文件直接回流
							So(w.Body.Len(), ShouldBeGreaterThan, 0)
							So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, jobID)
						} else {
							// 远端地址只回传 URL
							var data struct {
								VideoURL string `json:"video_url"`
							}
							So(json.Unmarshal(w.Body.Bytes(), &data), ShouldBeNil)
							So(data.VideoURL, ShouldNotBeEmpty)
						}
					})
				})
			})
		})
	})
}

// TestVideoGeneration_ProgressSteps 测试任务进度按阶段推进
func TestVideoGeneration_ProgressSteps(t *testing.T) {
	Convey("任务进度阶段测试", t, func() {
		jobID := submitJob(t, map[string]any{
			"prompt": "A lighthouse in a storm",
		})

		final := waitForTerminal(t, jobID, 90*time.Second)
		So(final.Status, ShouldEqual, video.JobStatusCompleted)

		Convey("完成后的任务出现在任务列表中", func() {
			w := doJSON(t, http.MethodGet, "/api/v1/videos/jobs", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			var data struct {
				Jobs  []video.JobProgress `json:"jobs"`
				Total int                 `json:"total"`
			}
			decodeData(t, decodeEnvelope(t, w), &data)
			So(data.Total, ShouldBeGreaterThan, 0)

			found := false
			for _, j := range data.Jobs {
				if j.JobID == jobID {
					found = true
					So(j.Status, ShouldEqual, video.JobStatusCompleted)
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

// TestVideoGeneration_ExplicitBackend 测试显式指定后端
func TestVideoGeneration_ExplicitBackend(t *testing.T) {
	Convey("显式指定 ark 后端生成", t, func() {
		jobID := submitJob(t, map[string]any{
			"prompt":  "Sunrise over mountains",
			"backend": "ark",
		})

		final := waitForTerminal(t, jobID, 90*time.Second)
		So(final.Status, ShouldEqual, video.JobStatusCompleted)

		w := doJSON(t, http.MethodGet, "/api/v1/videos/jobs/"+jobID+"/result", nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		var result struct {
			BackendUsed string `json:"backend_used"`
		}
		decodeData(t, decodeEnvelope(t, w), &result)
		So(result.BackendUsed, ShouldEqual, "ark")
	})
}

// TestVideoGeneration_InvalidRequests 测试非法请求的校验
func TestVideoGeneration_InvalidRequests(t *testing.T) {
	Convey("非法生成请求测试", t, func() {
		Convey("缺少 prompt 返回 400", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/generate", map[string]any{
				"style": "cinematic",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 40001)
		})

		Convey("时长越界返回 400", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/generate", map[string]any{
				"prompt":   "too long",
				"duration": 999,
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 40002)
			So(resp.Message, ShouldContainSubstring, "duration")
		})

		Convey("未知后端返回 400", func() {
			w := doJSON(t, http.MethodPost, "/api/v1/videos/generate", map[string]any{
				"prompt":  "bad backend",
				"backend": "sora",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 40002)
			So(resp.Message, ShouldContainSubstring, "backend")
		})

		Convey("查询不存在的任务返回 404", func() {
			w := doJSON(t, http.MethodGet, "/api/v1/videos/jobs/nonexistent-job-id", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)

			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 40401)
		})

		Convey("查询不存在任务的结果返回 404", func() {
			w := doJSON(t, http.MethodGet, "/api/v1/videos/jobs/nonexistent-job-id/result", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("下载不存在的任务返回 404", func() {
			w := doJSON(t, http.MethodGet, "/api/v1/videos/download/nonexistent-job-id", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

// TestVideoGeneration_ResultBeforeCompletion 测试未完成任务的结果查询
func TestVideoGeneration_ResultBeforeCompletion(t *testing.T) {
	Convey("未完成任务查询结果返回 400", t, func() {
		jobID := submitJob(t, map[string]any{
			"prompt": "A slow burning candle",
		})

		// 任务刚提交，大概率还没完成；已完成则跳过本检查
		w := doJSON(t, http.MethodGet, "/api/v1/videos/jobs/"+jobID+"/result", nil)
		if w.Code == http.StatusBadRequest {
			resp := decodeEnvelope(t, w)
			So(resp.Code, ShouldEqual, 40003)
			So(resp.Message, ShouldContainSubstring, "Job not completed")
		}

		// 等任务跑完，避免影响其他用例的并发配额
		waitForTerminal(t, jobID, 90*time.Second)
	})
}
