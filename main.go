// @title Math Quest API
// @version 1.0
// @description 八年级数学学习平台的后端服务。
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"fmt"
	"math_quest_backend/internal/app"
	"math_quest_backend/internal/config"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/repository"
	"math_quest_backend/internal/service"
	"math_quest_backend/pkg/database"
	"math_quest_backend/pkg/logger"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir    string
	forceMigrate bool
	seedFile     string
	userEmail    string
	userRole     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "math-quest",
		Short:        "Math Quest learning backend",
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "配置文件所在目录")
	rootCmd.Flags().BoolVar(&forceMigrate, "migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().BoolVar(&forceMigrate, "migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE:  runMigrate,
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load curriculum concepts and problems from YAML",
		RunE:  runSeed,
	}
	seedCmd.Flags().StringVar(&seedFile, "file", "", "课程文件路径，默认使用配置中的 curriculum.seed_path")

	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	promoteCmd := &cobra.Command{
		Use:   "promote",
		Short: "Change a user's role (default admin)",
		RunE:  runPromote,
	}
	promoteCmd.Flags().StringVar(&userEmail, "email", "", "用户邮箱")
	promoteCmd.Flags().StringVar(&userRole, "role", string(model.Admin), "目标角色：student 或 admin")
	promoteCmd.MarkFlagRequired("email")
	userCmd.AddCommand(promoteCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, userCmd)
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ForceMigrate = forceMigrate

	application, err := app.NewApp(cfg)
	if err != nil {
		logger.Log.Error("Failed to start", zap.Error(err))
		return err
	}
	defer logger.Log.Sync()

	return application.Run()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Log.Info("数据库迁移完成")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ForceMigrate = true
	// 由本命令显式导入，避免重复
	cfg.Curriculum.SeedOnStart = false

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	path := seedFile
	if path == "" {
		path = cfg.Curriculum.SeedPath
	}
	result, err := application.SeedCurriculum(context.Background(), path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "concepts created: %d, updated: %d, problems created: %d\n",
		result.ConceptsCreated, result.ConceptsUpdated, result.ProblemsCreated)
	return nil
}

func runPromote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	role, err := service.ParseRole(userRole)
	if err != nil {
		return err
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	users := service.NewUserService(repository.NewUserRepository(db))
	user, err := users.SetRole(userEmail, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user %s (id %d) is now %s\n", user.Email, user.ID, user.Role)
	return nil
}
