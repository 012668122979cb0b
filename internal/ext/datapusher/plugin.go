// Package datapusher 提供向数据存储推送资源的动作与权限函数
package datapusher

import (
	"fmt"
	"sync"
	"time"

	"ckan-go/internal/logic"
	"ckan-go/internal/plugins"
	"ckan-go/internal/types"
)

// PluginName 插件名
const PluginName = "datapusher"

// 推送任务状态
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
)

func init() {
	plugins.Register(PluginName, func() plugins.Plugin { return New() })
}

// Task 推送任务
type Task struct {
	ResourceID  string    `json:"resource_id"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

// Plugin 记录推送请求；实际的数据存储写入不在本进程内完成
type Plugin struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// New 创建插件
func New() *Plugin {
	return &Plugin{tasks: make(map[string]*Task)}
}

func (*Plugin) Name() string { return PluginName }

func (*Plugin) GetAuthFunctions() map[string]types.AuthFunction {
	return map[string]types.AuthFunction{
		"datapusher_submit": DatapusherSubmit,
		"datapusher_status": DatapusherStatus,
	}
}

func (p *Plugin) GetActions() map[string]types.Action {
	return map[string]types.Action{
		"datapusher_submit": p.submit,
		"datapusher_status": p.status,
	}
}

// DatapusherSubmit 有权更新资源即可提交
func DatapusherSubmit(ctx *types.Context, data types.DataDict) types.AuthResult {
	return datastoreAuth(ctx, data)
}

// DatapusherStatus 有权更新资源即可查看状态
func DatapusherStatus(ctx *types.Context, data types.DataDict) types.AuthResult {
	return datastoreAuth(ctx, data)
}

// datastoreAuth 数据存储权限：资源的 resource_update 权限
func datastoreAuth(ctx *types.Context, data types.DataDict) types.AuthResult {
	if _, ok := data["id"]; !ok {
		data["id"] = data["resource_id"]
	}

	if ctx.Checker != nil {
		sub := *ctx
		sub.Resource = nil
		if err := ctx.Checker.CheckAccess("resource_update", &sub, data); err == nil {
			return types.Allow()
		}
	}
	return types.Deny(fmt.Sprintf("User %s not authorized to update resource %v", ctx.User, data["id"]))
}

func resourceID(data types.DataDict) (string, error) {
	for _, key := range []string{"resource_id", "id"} {
		if id, ok := data[key].(string); ok && id != "" {
			return id, nil
		}
	}
	return "", logic.NewValidationError(types.ErrorDict{"resource_id": {"Missing value"}})
}

func (p *Plugin) submit(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := resourceID(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Checker.CheckAccess("datapusher_submit", ctx, data); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks[id] = &Task{ResourceID: id, Status: StatusPending, LastUpdated: time.Now().UTC()}
	return true, nil
}

func (p *Plugin) status(ctx *types.Context, data types.DataDict) (any, error) {
	id, err := resourceID(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Checker.CheckAccess("datapusher_status", ctx, data); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	task, ok := p.tasks[id]
	if !ok {
		return types.DataDict{"resource_id": id, "status": nil}, nil
	}
	return types.DataDict{
		"resource_id":  task.ResourceID,
		"status":       task.Status,
		"last_updated": task.LastUpdated.Format(time.RFC3339),
	}, nil
}

// Complete 标记任务完成
func (p *Plugin) Complete(resourceID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	task, ok := p.tasks[resourceID]
	if ok {
		task.Status = StatusComplete
		task.LastUpdated = time.Now().UTC()
	}
	return ok
}
