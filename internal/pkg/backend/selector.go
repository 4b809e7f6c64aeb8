package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"lychee/internal/config"
	"lychee/internal/model/video"
)

// Selector 按配置的偏好顺序在多个视频后端之间调度
// 未配置 API Key 的后端用模拟适配器顶替，保证本地联调可跑通
type Selector struct {
	adapters  map[string]Adapter
	available map[string]bool
	order     []video.VideoBackend
}

// NewSelector 根据配置构建所有后端适配器
func NewSelector(cfg *config.BackendsConfig) *Selector {
	poll := PollPolicy{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
	}
	if poll.Interval <= 0 || poll.MaxAttempts <= 0 {
		poll = DefaultPollPolicy()
	}

	s := &Selector{
		adapters:  make(map[string]Adapter),
		available: make(map[string]bool),
	}

	if cfg.Pollo.APIKey != "" {
		s.adapters[video.VideoBackendPollo.String()] = NewPolloAdapter(&cfg.Pollo, poll)
		s.available[video.VideoBackendPollo.String()] = true
		log.Info().Str("backend", video.VideoBackendPollo.String()).Msg("video backend initialized")
	} else {
		s.adapters[video.VideoBackendPollo.String()] = NewMockAdapter(video.VideoBackendPollo)
		s.available[video.VideoBackendPollo.String()] = false
		log.Warn().Str("backend", video.VideoBackendPollo.String()).Msg("API key not found, using mock adapter")
	}

	if cfg.ImagineArt.APIKey != "" {
		s.adapters[video.VideoBackendImagineArt.String()] = NewImagineArtAdapter(&cfg.ImagineArt, poll)
		s.available[video.VideoBackendImagineArt.String()] = true
		log.Info().Str("backend", video.VideoBackendImagineArt.String()).Msg("video backend initialized")
	} else {
		s.adapters[video.VideoBackendImagineArt.String()] = NewMockAdapter(video.VideoBackendImagineArt)
		s.available[video.VideoBackendImagineArt.String()] = false
		log.Warn().Str("backend", video.VideoBackendImagineArt.String()).Msg("API key not found, using mock adapter")
	}

	if cfg.Ark.APIKey != "" {
		s.adapters[video.VideoBackendArk.String()] = NewArkAdapter(&cfg.Ark, poll)
		s.available[video.VideoBackendArk.String()] = true
		log.Info().Str("backend", video.VideoBackendArk.String()).Msg("video backend initialized")
	} else {
		s.adapters[video.VideoBackendArk.String()] = NewMockAdapter(video.VideoBackendArk)
		s.available[video.VideoBackendArk.String()] = false
		log.Warn().Str("backend", video.VideoBackendArk.String()).Msg("API key not found, using mock adapter")
	}

	for _, name := range cfg.Preference {
		b := video.VideoBackend(name)
		if _, ok := s.adapters[b.String()]; ok {
			s.order = append(s.order, b)
		}
	}
	if len(s.order) == 0 {
		s.order = []video.VideoBackend{video.VideoBackendPollo, video.VideoBackendImagineArt, video.VideoBackendArk}
	}

	return s
}

// Adapter 返回指定后端的适配器
func (s *Selector) Adapter(backend video.VideoBackend) (Adapter, error) {
	adapter, ok := s.adapters[backend.String()]
	if !ok {
		return nil, fmt.Errorf("unknown video backend: %s", backend)
	}
	return adapter, nil
}

// Availability 各后端是否配置了真实凭证
func (s *Selector) Availability() map[string]bool {
	out := make(map[string]bool, len(s.available))
	for name, ok := range s.available {
		out[name] = ok
	}
	return out
}

// Preference 自动模式的尝试顺序
func (s *Selector) Preference() []string {
	out := make([]string, 0, len(s.order))
	for _, b := range s.order {
		out = append(out, b.String())
	}
	return out
}

// AvailableBackends 有真实凭证的后端（按偏好顺序）
// 一个都没有时返回全部后端，此时生成走模拟适配器
func (s *Selector) AvailableBackends() []string {
	out := make([]string, 0, len(s.order))
	for _, b := range s.order {
		if s.available[b.String()] {
			out = append(out, b.String())
		}
	}
	if len(out) == 0 {
		return s.Preference()
	}
	return out
}

// Generate 为脚本生成视频片段
// 自动模式按偏好顺序尝试各后端，全部失败时降级为占位片段；
// 指定后端时失败直接上抛，不做降级
func (s *Selector) Generate(ctx context.Context, script *video.Script, style video.VideoStyle,
	backend video.VideoBackend, opts video.GenerationOptions) ([]video.VideoSegment, error) {

	sceneDescriptions := script.SceneDescriptions()
	if len(sceneDescriptions) == 0 {
		return nil, fmt.Errorf("script has no segments")
	}

	durationPerSegment := int(script.TotalDuration) / len(sceneDescriptions)
	if durationPerSegment < 3 {
		durationPerSegment = 3
	}

	if backend.Explicit() {
		adapter, err := s.Adapter(backend)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", adapter.Name()).Int("segments", len(sceneDescriptions)).Msg("generating video segments")
		return adapter.GenerateSegments(ctx, sceneDescriptions, style, durationPerSegment, opts)
	}

	// 自动模式：优先尝试有真实凭证的后端，一个都没有时走模拟适配器
	candidates := make([]video.VideoBackend, 0, len(s.order))
	for _, b := range s.order {
		if s.available[b.String()] {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		candidates = s.order
	}

	for _, b := range candidates {
		adapter := s.adapters[b.String()]
		log.Info().Str("backend", adapter.Name()).Int("segments", len(sceneDescriptions)).Msg("generating video segments")

		segments, err := adapter.GenerateSegments(ctx, sceneDescriptions, style, durationPerSegment, opts)
		if err != nil {
			log.Warn().Err(err).Str("backend", adapter.Name()).Msg("video backend failed, trying next")
			continue
		}
		return segments, nil
	}

	log.Warn().Msg("all video backends failed, using fallback segments")
	return video.FallbackVideoSegments(script), nil
}

// Models 汇总所有后端的可用模型
func (s *Selector) Models(ctx context.Context) map[string][]ModelInfo {
	out := make(map[string][]ModelInfo, len(s.adapters))
	for name, adapter := range s.adapters {
		models := adapter.ListModels(ctx)
		if models == nil {
			models = []ModelInfo{}
		}
		out[name] = models
	}
	return out
}
