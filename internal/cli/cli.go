// Package cli 实现 ckan 命令行
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"ckan-go/internal/app"
	"ckan-go/internal/config"
	"ckan-go/internal/models"
	"ckan-go/internal/plugins"
	"ckan-go/internal/repository"
	"ckan-go/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

const usage = `Usage: ckan [-c CONFIG] COMMAND [ARGS]

Commands:
  run                          Start the web server
  db init                      Create tables and the configured sysadmin
  ratings count                Count ratings
  ratings clean                Remove all ratings
  ratings clean-anonymous      Remove ratings made by anonymous users
  plugin-info                  List loaded plugins and the hooks they implement
  profile URL [USER]           Profile a GET request against the application
`

// errUsage 命令行参数错误
var errUsage = errors.New("invalid usage")

// CLI 命令行上下文
type CLI struct {
	out     io.Writer
	errOut  io.Writer
	iniPath string
}

// Run 解析参数并执行命令，返回退出码
func Run(args []string, out, errOut io.Writer) int {
	flags := pflag.NewFlagSet("ckan", pflag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.Usage = func() { fmt.Fprint(errOut, usage) }

	c := &CLI{out: out, errOut: errOut}
	flags.StringVarP(&c.iniPath, "config", "c", "", "Config file to use")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := c.dispatch(flags.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(errOut, usage)
			return 2
		}
		config.ShoutTo(errOut, err)
		return 1
	}
	return 0
}

func (c *CLI) dispatch(args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "run":
		return c.serve()
	case "db":
		if len(rest) != 1 || rest[0] != "init" {
			return errUsage
		}
		return c.dbInit()
	case "ratings":
		if len(rest) != 1 {
			return errUsage
		}
		return c.ratings(rest[0])
	case "plugin-info":
		return c.pluginInfo()
	case "profile":
		if len(rest) < 1 || len(rest) > 2 {
			return errUsage
		}
		user := "visitor"
		if len(rest) == 2 {
			user = rest[1]
		}
		return c.profile(rest[0], user)
	}
	return errUsage
}

func shout(w io.Writer, attr color.Attribute, msg string) {
	color.New(attr).Fprintln(w, msg)
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.LoadConfig(c.iniPath)
}

func (c *CLI) serve() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.MakeApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.Settings.CKAN.GetAddress()
	fmt.Fprintf(c.out, "Serving on http://%s\n", addr)
	return a.Engine.Run(addr)
}

func (c *CLI) dbInit() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.LoadEnvironment(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := models.AutoMigrate(a.DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	authService := service.NewAuthService(repository.NewUserRepository(a.DB), nil, a.Settings)
	admin, err := authService.InitSysadmin()
	if err != nil {
		return err
	}
	if admin != nil {
		fmt.Fprintf(c.out, "Sysadmin: %s\n", admin.Name)
	}

	shout(c.out, color.FgGreen, "Initialising DB: SUCCESS")
	return nil
}

func (c *CLI) ratings(sub string) error {
	var run func(*repository.RatingRepository) (string, error)
	switch sub {
	case "count":
		run = func(repo *repository.RatingRepository) (string, error) {
			n, err := repo.Count()
			return fmt.Sprintf("Ratings: %d", n), err
		}
	case "clean":
		run = func(repo *repository.RatingRepository) (string, error) {
			n, err := repo.DeleteAll()
			return fmt.Sprintf("Deleted %d ratings", n), err
		}
	case "clean-anonymous":
		run = func(repo *repository.RatingRepository) (string, error) {
			n, err := repo.DeleteAnonymous()
			return fmt.Sprintf("Deleted %d anonymous ratings", n), err
		}
	default:
		return errUsage
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.LoadEnvironment(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	msg, err := run(repository.NewRatingRepository(a.DB))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func (c *CLI) pluginInfo() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.LoadEnvironment(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	loaded := a.Plugins.Plugins()
	if len(loaded) == 0 {
		fmt.Fprintln(c.out, "No plugins loaded")
		fmt.Fprintf(c.out, "Available: %s\n", strings.Join(plugins.Registered(), " "))
		return nil
	}
	for _, p := range loaded {
		fmt.Fprintln(c.out, p.Name())
		fmt.Fprintf(c.out, "  implements: %s\n", strings.Join(plugins.Interfaces(p), ", "))
		if v, ok := p.(plugins.IResourceView); ok {
			info := v.Info()
			fmt.Fprintf(c.out, "  view: %s (%s)\n", info.Name, info.Title)
		}
	}
	return nil
}

// ProfileFilename 由请求地址得到 profile 文件名
func ProfileFilename(url string) string {
	return "ckan" + strings.NewReplacer("/", ".", "?", ".").Replace(url) + ".profile"
}

func (c *CLI) profile(url, user string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.MakeApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	if user != "visitor" {
		u, err := repository.NewUserRepository(a.DB).GetByName(user)
		if err != nil {
			return fmt.Errorf("用户不存在: %s", user)
		}
		token, err := a.JWT.GenerateToken(u.ID, u.Name, u.Sysadmin)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	filename := ProfileFilename(url)
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("创建profile文件失败: %w", err)
	}
	defer f.Close()

	if err := pprof.StartCPUProfile(f); err != nil {
		return err
	}
	start := time.Now()
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	elapsed := time.Since(start)
	pprof.StopCPUProfile()

	fmt.Fprintf(c.out, "GET %s -> %d in %s\n", url, w.Code, elapsed)
	fmt.Fprintf(c.out, "Inspect with: go tool pprof %s\n", filename)
	shout(c.out, color.FgGreen, "Written profile to: "+filename)
	return nil
}
