package backend

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"lychee/internal/config"
	"lychee/internal/model/video"
)

// stubAdapter 测试用适配器，可注入固定错误
type stubAdapter struct {
	name  string
	err   error
	calls int
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) GenerateSegments(_ context.Context, sceneDescriptions []string, _ video.VideoStyle,
	durationPerSegment int, _ video.GenerationOptions) ([]video.VideoSegment, error) {

	a.calls++
	if a.err != nil {
		return nil, a.err
	}

	segments := make([]video.VideoSegment, 0, len(sceneDescriptions))
	for i, desc := range sceneDescriptions {
		segments = append(segments, video.VideoSegment{
			VideoURL:         "stub.mp4",
			SceneDescription: desc,
			StartTime:        float64(i * durationPerSegment),
			EndTime:          float64((i + 1) * durationPerSegment),
			Duration:         float64(durationPerSegment),
			BackendUsed:      a.name,
		})
	}
	return segments, nil
}

func (a *stubAdapter) CheckStatus(_ context.Context, taskID string) TaskStatus {
	return TaskStatus{TaskID: taskID, Status: "completed", Progress: 100}
}

func (a *stubAdapter) ListModels(_ context.Context) []ModelInfo {
	return []ModelInfo{{ID: a.name + "-v1", Name: a.name, Backend: a.name}}
}

func testScript(segments int) *video.Script {
	s := &video.Script{Title: "test", TotalDuration: float64(segments * 10)}
	for i := 0; i < segments; i++ {
		s.Segments = append(s.Segments, video.ScriptSegment{
			Text:             "narration",
			StartTime:        float64(i * 10),
			EndTime:          float64((i + 1) * 10),
			SceneDescription: "a test scene",
		})
	}
	return s
}

func TestNewSelector_NoCredentials(t *testing.T) {
	Convey("未配置任何 API Key 时全部使用模拟适配器", t, func() {
		s := NewSelector(&config.BackendsConfig{})

		Convey("可用性全为 false", func() {
			avail := s.Availability()
			So(len(avail), ShouldEqual, 3)
			So(avail["pollo"], ShouldBeFalse)
			So(avail["imagineart"], ShouldBeFalse)
			So(avail["ark"], ShouldBeFalse)
		})

		Convey("尝试顺序为默认顺序", func() {
			So(s.Preference(), ShouldResemble, []string{"pollo", "imagineart", "ark"})
		})

		Convey("无真实凭证时 AvailableBackends 返回全部后端", func() {
			So(s.AvailableBackends(), ShouldResemble, []string{"pollo", "imagineart", "ark"})
		})

		Convey("auto 模式通过模拟适配器生成片段", func() {
			segments, err := s.Generate(context.Background(), testScript(2), video.VideoStyleCinematic,
				video.VideoBackendAuto, video.DefaultGenerationOptions())
			So(err, ShouldBeNil)
			So(len(segments), ShouldEqual, 2)
			So(segments[0].BackendUsed, ShouldEqual, "pollo")
			So(segments[0].VideoURL, ShouldContainSubstring, "mock-video-storage.com")
		})
	})
}

func TestNewSelector_Credentials(t *testing.T) {
	Convey("配置了 API Key 的后端标记为可用", t, func() {
		cfg := &config.BackendsConfig{}
		cfg.Ark.APIKey = "test-key"
		s := NewSelector(cfg)

		avail := s.Availability()
		So(avail["ark"], ShouldBeTrue)
		So(avail["pollo"], ShouldBeFalse)

		Convey("AvailableBackends 只含有凭证的后端", func() {
			So(s.AvailableBackends(), ShouldResemble, []string{"ark"})
		})
	})

	Convey("偏好顺序来自配置，未知名称被忽略", t, func() {
		cfg := &config.BackendsConfig{
			Preference: []string{"ark", "sora", "pollo"},
		}
		s := NewSelector(cfg)
		So(s.Preference(), ShouldResemble, []string{"ark", "pollo"})
	})
}

func TestSelector_Generate_Explicit(t *testing.T) {
	Convey("显式指定后端时不做降级", t, func() {
		s := NewSelector(&config.BackendsConfig{})

		Convey("指定后端成功时直接返回其片段", func() {
			segments, err := s.Generate(context.Background(), testScript(3), video.VideoStyleAnimated,
				video.VideoBackendArk, video.DefaultGenerationOptions())
			So(err, ShouldBeNil)
			So(len(segments), ShouldEqual, 3)
			So(segments[0].BackendUsed, ShouldEqual, "ark")
			So(segments[0].VideoURL, ShouldContainSubstring, "mock-ark-storage.com")
		})

		Convey("指定后端失败时错误直接上抛", func() {
			failing := &stubAdapter{name: "pollo", err: errors.New("quota exceeded")}
			s.adapters["pollo"] = failing

			_, err := s.Generate(context.Background(), testScript(2), video.VideoStyleCinematic,
				video.VideoBackendPollo, video.DefaultGenerationOptions())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "quota exceeded")
			So(failing.calls, ShouldEqual, 1)
		})

		Convey("auto 不是显式后端，无片段脚本直接报错", func() {
			_, err := s.Generate(context.Background(), &video.Script{}, video.VideoStyleCinematic,
				video.VideoBackendAuto, video.DefaultGenerationOptions())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSelector_Generate_AutoFallback(t *testing.T) {
	Convey("auto 模式按偏好顺序降级", t, func() {
		s := NewSelector(&config.BackendsConfig{})

		Convey("首选失败时尝试下一个后端", func() {
			first := &stubAdapter{name: "pollo", err: errors.New("timeout")}
			second := &stubAdapter{name: "imagineart"}
			s.adapters["pollo"] = first
			s.adapters["imagineart"] = second

			segments, err := s.Generate(context.Background(), testScript(2), video.VideoStyleCinematic,
				video.VideoBackendAuto, video.DefaultGenerationOptions())
			So(err, ShouldBeNil)
			So(first.calls, ShouldEqual, 1)
			So(second.calls, ShouldEqual, 1)
			So(segments[0].BackendUsed, ShouldEqual, "imagineart")
		})

		Convey("全部失败时降级为占位片段", func() {
			for _, name := range []string{"pollo", "imagineart", "ark"} {
				s.adapters[name] = &stubAdapter{name: name, err: errors.New("down")}
			}

			script := testScript(2)
			segments, err := s.Generate(context.Background(), script, video.VideoStyleCinematic,
				video.VideoBackendAuto, video.DefaultGenerationOptions())
			So(err, ShouldBeNil)
			So(len(segments), ShouldEqual, 2)
			So(segments[0].BackendUsed, ShouldEqual, video.BackendFallback)
			So(segments[0].VideoURL, ShouldEqual, "fallback_video_0.mp4")
			So(segments[1].StartTime, ShouldAlmostEqual, 10.0)
		})

		Convey("有真实凭证时只尝试有凭证的后端", func() {
			withKey := &stubAdapter{name: "ark"}
			mockOnly := &stubAdapter{name: "pollo"}
			s.adapters["ark"] = withKey
			s.adapters["pollo"] = mockOnly
			s.available["ark"] = true

			segments, err := s.Generate(context.Background(), testScript(1), video.VideoStyleCinematic,
				video.VideoBackendAuto, video.DefaultGenerationOptions())
			So(err, ShouldBeNil)
			So(withKey.calls, ShouldEqual, 1)
			So(mockOnly.calls, ShouldEqual, 0)
			So(segments[0].BackendUsed, ShouldEqual, "ark")
		})
	})
}

func TestSelector_Generate_SegmentDuration(t *testing.T) {
	Convey("片段时长按总时长均分且不低于 3 秒", t, func() {
		s := NewSelector(&config.BackendsConfig{})

		script := testScript(5)
		script.TotalDuration = 10 // 均分为 2 秒，低于下限

		segments, err := s.Generate(context.Background(), script, video.VideoStyleCinematic,
			video.VideoBackendAuto, video.DefaultGenerationOptions())
		So(err, ShouldBeNil)
		So(segments[0].Duration, ShouldEqual, 3.0)
	})
}

func TestSelector_AdapterAndModels(t *testing.T) {
	Convey("Adapter 与 Models 查询", t, func() {
		s := NewSelector(&config.BackendsConfig{})

		Convey("未知后端返回错误", func() {
			_, err := s.Adapter(video.VideoBackend("sora"))
			So(err, ShouldNotBeNil)
		})

		Convey("Models 汇总每个后端的模型列表", func() {
			models := s.Models(context.Background())
			So(len(models), ShouldEqual, 3)
			So(len(models["pollo"]), ShouldBeGreaterThan, 0)
			So(len(models["ark"]), ShouldBeGreaterThan, 0)
			So(models["ark"][0].Backend, ShouldEqual, "ark")
		})
	})
}
