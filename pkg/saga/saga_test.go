package saga

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestSaga_Execute_Success 测试所有步骤成功的场景
func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	sg := NewSaga(5 * time.Second)

	sg.AddStep("封面入库",
		func(ctx context.Context) error {
			executed = append(executed, "封面入库")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除封面")
			return nil
		},
	)

	sg.AddStep("记录落库",
		func(ctx context.Context) error {
			executed = append(executed, "记录落库")
			return nil
		},
		nil,
	)

	err := sg.Execute(context.Background())
	if err != nil {
		t.Fatalf("Saga执行失败: %v", err)
	}

	if len(executed) != 2 {
		t.Errorf("期望执行2个步骤，实际执行%d个", len(executed))
	}

	if executed[0] != "封面入库" || executed[1] != "记录落库" {
		t.Errorf("执行顺序错误: %v", executed)
	}
}

// TestSaga_Execute_FailureAndCompensate 测试步骤失败触发补偿
func TestSaga_Execute_FailureAndCompensate(t *testing.T) {
	executed := make([]string, 0)

	sg := NewSaga(5 * time.Second)

	sg.AddStep("封面入库",
		func(ctx context.Context) error {
			executed = append(executed, "封面入库")
			return nil
		},
		func(ctx context.Context) error {
			executed = append(executed, "删除封面")
			return nil
		},
	)

	sg.AddStep("记录落库",
		func(ctx context.Context) error {
			return errors.New("数据库不可用")
		},
		nil,
	)

	err := sg.Execute(context.Background())
	if err == nil {
		t.Fatal("期望Saga执行失败")
	}

	// 失败后应补偿已完成的步骤：删除已写入的封面
	want := []string{"封面入库", "删除封面"}
	if len(executed) != len(want) {
		t.Fatalf("期望执行%d个操作，实际%d个: %v", len(want), len(executed), executed)
	}
	for i := range want {
		if executed[i] != want[i] {
			t.Errorf("第%d个操作期望%s，实际%s", i, want[i], executed[i])
		}
	}
}

// TestSaga_Compensate_ReverseOrder 测试补偿按逆序执行
func TestSaga_Compensate_ReverseOrder(t *testing.T) {
	compensated := make([]string, 0)

	sg := NewSaga(5 * time.Second)
	sg.AddStep("A", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			compensated = append(compensated, "A")
			return nil
		})
	sg.AddStep("B", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			compensated = append(compensated, "B")
			return nil
		})
	sg.AddStep("C", func(ctx context.Context) error { return errors.New("失败") }, nil)

	if err := sg.Execute(context.Background()); err == nil {
		t.Fatal("期望执行失败")
	}

	if len(compensated) != 2 || compensated[0] != "B" || compensated[1] != "A" {
		t.Errorf("补偿顺序错误: %v", compensated)
	}
}

// TestSaga_CompensateFailure_Continues 测试某个补偿失败不影响其余补偿
func TestSaga_CompensateFailure_Continues(t *testing.T) {
	compensated := make([]string, 0)

	sg := NewSaga(5 * time.Second)
	sg.AddStep("A", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			compensated = append(compensated, "A")
			return nil
		})
	sg.AddStep("B", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			compensated = append(compensated, "B")
			return errors.New("补偿失败")
		})
	sg.AddStep("C", func(ctx context.Context) error { return errors.New("失败") }, nil)

	if err := sg.Execute(context.Background()); err == nil {
		t.Fatal("期望执行失败")
	}

	// B的补偿失败后，A的补偿仍应执行
	if len(compensated) != 2 || compensated[0] != "B" || compensated[1] != "A" {
		t.Errorf("补偿执行不完整: %v", compensated)
	}
}
