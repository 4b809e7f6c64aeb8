package video

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFallbackScript(t *testing.T) {
	Convey("FallbackScript 生成确定性兜底脚本", t, func() {
		script := FallbackScript("a cat in space", 30)

		So(script.Title, ShouldEqual, "Story about a cat in space")
		So(script.Summary, ShouldEqual, "A narrative about a cat in space")
		So(script.TotalDuration, ShouldEqual, 30.0)
		So(len(script.Segments), ShouldEqual, FallbackScriptSegments)

		Convey("片段均分总时长且首尾相接", func() {
			So(script.Segments[0].StartTime, ShouldEqual, 0.0)
			So(script.Segments[0].EndTime, ShouldAlmostEqual, 10.0)
			So(script.Segments[1].StartTime, ShouldAlmostEqual, 10.0)
			So(script.Segments[2].EndTime, ShouldAlmostEqual, 30.0)
		})

		Convey("片段带有文本和画面描述", func() {
			So(script.Segments[0].Text, ShouldContainSubstring, "a cat in space")
			So(script.Segments[0].SceneDescription, ShouldEqual, "Scene 1")
			So(script.Segments[2].SceneDescription, ShouldEqual, "Scene 3")
		})
	})
}

func TestFallbackVoiceSegments(t *testing.T) {
	Convey("FallbackVoiceSegments 由脚本推导兜底配音", t, func() {
		script := &Script{Segments: []ScriptSegment{
			// 5 词，按 150 词/分钟估算为 2 秒
			{Text: "one two three four five", StartTime: 0, EndTime: 10},
			{Text: "six seven", StartTime: 10, EndTime: 20},
		}}

		segments := FallbackVoiceSegments(script, nil)
		So(len(segments), ShouldEqual, 2)

		So(segments[0].AudioURL, ShouldEqual, "fallback_audio_0.mp3")
		So(segments[0].StartTime, ShouldEqual, 0.0)
		So(segments[0].Duration, ShouldAlmostEqual, 2.0)
		So(segments[0].EndTime, ShouldAlmostEqual, 2.0)

		Convey("起始时间逐段累计", func() {
			So(segments[1].StartTime, ShouldAlmostEqual, 2.0)
			So(segments[1].Duration, ShouldAlmostEqual, 0.8)
			So(segments[1].EndTime, ShouldAlmostEqual, 2.8)
		})

		Convey("自定义词数统计函数生效", func() {
			fixed := func(string) int { return 150 }
			segments := FallbackVoiceSegments(script, fixed)
			So(segments[0].Duration, ShouldAlmostEqual, 60.0)
			So(segments[1].StartTime, ShouldAlmostEqual, 60.0)
		})
	})
}

func TestFallbackVideoSegments(t *testing.T) {
	Convey("FallbackVideoSegments 由脚本推导兜底视频片段", t, func() {
		script := &Script{Segments: []ScriptSegment{
			{Text: "one", StartTime: 0, EndTime: 12, SceneDescription: "scene a"},
			{Text: "two", StartTime: 12, EndTime: 30, SceneDescription: "scene b"},
		}}

		segments := FallbackVideoSegments(script)
		So(len(segments), ShouldEqual, 2)

		So(segments[0].VideoURL, ShouldEqual, "fallback_video_0.mp4")
		So(segments[0].SceneDescription, ShouldEqual, "scene a")
		So(segments[0].Duration, ShouldAlmostEqual, 12.0)
		So(segments[0].BackendUsed, ShouldEqual, BackendFallback)

		So(segments[1].StartTime, ShouldAlmostEqual, 12.0)
		So(segments[1].EndTime, ShouldAlmostEqual, 30.0)
		So(segments[1].BackendUsed, ShouldEqual, BackendFallback)
	})
}
