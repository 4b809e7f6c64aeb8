package video

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanJSONContent(t *testing.T) {
	Convey("cleanJSONContent 清理 LLM 返回内容", t, func() {
		Convey("裸 JSON 原样保留", func() {
			So(cleanJSONContent(`{"title": "t"}`), ShouldEqual, `{"title": "t"}`)
		})

		Convey("去除首尾空白", func() {
			So(cleanJSONContent("  \n {\"a\": 1} \n "), ShouldEqual, `{"a": 1}`)
		})

		Convey("剥离 ```json 代码块标记", func() {
			content := "```json\n{\"title\": \"t\"}\n```"
			So(cleanJSONContent(content), ShouldEqual, `{"title": "t"}`)
		})

		Convey("剥离无语言标记的代码块", func() {
			content := "```\n{\"title\": \"t\"}\n```"
			So(cleanJSONContent(content), ShouldEqual, `{"title": "t"}`)
		})

		Convey("代码块前后的空白不影响剥离", func() {
			content := "\n  ```json\n{\"a\": 1}\n```  \n"
			So(cleanJSONContent(content), ShouldEqual, `{"a": 1}`)
		})
	})
}

func TestParseScriptJSON(t *testing.T) {
	Convey("parseScriptJSON 解析脚本", t, func() {
		Convey("合法脚本解析成功", func() {
			content := `{
				"title": "Ocean Story",
				"segments": [
					{"text": "The waves crash.", "start_time": 0, "end_time": 10, "scene_description": "Waves on rocks"},
					{"text": "The sun sets.", "start_time": 10, "end_time": 20}
				],
				"total_duration": 20,
				"summary": "A story about the ocean"
			}`

			script, err := parseScriptJSON(content)
			So(err, ShouldBeNil)
			So(script.Title, ShouldEqual, "Ocean Story")
			So(len(script.Segments), ShouldEqual, 2)
			So(script.Segments[0].SceneDescription, ShouldEqual, "Waves on rocks")
			So(script.Segments[1].EndTime, ShouldEqual, 20.0)
		})

		Convey("带 markdown 代码块的脚本也能解析", func() {
			content := "```json\n{\"title\": \"T\", \"segments\": [{\"text\": \"a\", \"start_time\": 0, \"end_time\": 5}]}\n```"
			script, err := parseScriptJSON(content)
			So(err, ShouldBeNil)
			So(script.Title, ShouldEqual, "T")
		})

		Convey("非 JSON 内容报错", func() {
			_, err := parseScriptJSON("I cannot generate that script.")
			So(err, ShouldNotBeNil)
		})

		Convey("无片段的脚本报错", func() {
			_, err := parseScriptJSON(`{"title": "empty", "segments": []}`)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no segments")
		})
	})
}
