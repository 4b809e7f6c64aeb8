package wordcount

import (
	"strings"
	"unicode"

	"github.com/go-ego/gse"
)

// Counter 词数统计器，用于估算口播时长
// 英文按空格分词即可，中文没有空格，需要 gse 分词
type Counter struct {
	segmenter *gse.Segmenter
}

// NewCounter 创建词数统计器实例
func NewCounter() *Counter {
	// 初始化 gse 分词器
	segmenter, err := gse.New()
	if err != nil {
		// 如果初始化失败，使用空分词器（降级到空格分词）
		return &Counter{segmenter: nil}
	}

	return &Counter{segmenter: &segmenter}
}

// Count 统计文本中的词数
func (c *Counter) Count(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if c.segmenter == nil || !containsHan(text) {
		return len(strings.Fields(text))
	}

	count := 0
	for _, word := range c.segmenter.Cut(text, false) {
		if isCountableWord(word) {
			count++
		}
	}
	return count
}

// containsHan 文本是否包含中文字符
func containsHan(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// isCountableWord 词是否计入词数（过滤纯标点和空白）
func isCountableWord(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
