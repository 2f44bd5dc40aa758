// Package saga 实现带补偿的多步操作编排
//
// 核心思想：
// 1. 将一次业务操作拆分为多个有副作用的步骤
// 2. 每个步骤有对应的补偿操作
// 3. 某步失败时，按逆序执行已完成步骤的补偿操作
//
// 典型用途：图书创建时"封面入库→记录落库"，落库失败需删除已写入的封面文件。
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/bookcatalog/pkg/logger"
)

// Step 表示Saga中的一个步骤
// 设计要点：
// 1. Action是正向操作（如写入封面文件、插入记录）
// 2. Compensate是补偿操作（如删除封面文件）
// 3. 补偿操作必须幂等（允许重试）
type Step struct {
	Name       string                          // 步骤名称（用于日志和调试）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作
}

// Saga 表示一次带补偿的多步操作
type Saga struct {
	steps    []Step        // 所有步骤
	executed []Step        // 已执行的步骤（用于补偿）
	timeout  time.Duration // 整体超时时间
}

// NewSaga 创建一个新的Saga
//
// 示例：
//
//	sg := saga.NewSaga(30 * time.Second)
//	sg.AddStep("封面入库", ingestCover, deleteCover)
//	sg.AddStep("记录落库", insertBook, nil)
//	err := sg.Execute(ctx)
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 添加一个步骤
// 步骤按添加顺序执行，按逆序补偿。Action和Compensate都可以为nil
// （最后一步通常无需补偿）。
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
// 某步失败或整体超时会触发补偿流程（逆序执行已完成步骤的Compensate），
// 然后返回失败步骤的错误。补偿使用新的Context，避免补偿本身被同一超时打断。
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			s.compensate(context.Background())
			return fmt.Errorf("saga超时: %w", ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.Background())
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行已完成步骤的补偿
// 某个补偿失败只记录日志，继续执行后续补偿（尽最大努力）。
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]

		if step.Compensate != nil {
			if err := step.Compensate(ctx); err != nil {
				logger.L().WithError(err).WithField("step", step.Name).Warn("补偿失败")
			}
		}
	}

	s.executed = nil
}
