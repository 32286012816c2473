package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Gaoz-1224/AgriChatBot/internal/knowledge"
)

var (
	kbCrop       string
	kbTopic      string
	kbSource     string
	kbLimit      int
	kbTopN       int
	kbOutputType string
)

// kbCmd 知识库管理命令组
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "管理农业知识库",
	Long:  `管理知识库文档：添加、导入、检索、查看统计。`,
}

// kbAddCmd 添加单条知识
var kbAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "添加一条知识",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, _, err := buildStore(cfg)
		if err != nil {
			return err
		}

		id, err := store.Add(context.Background(), args[0], kbCrop, kbTopic, kbSource)
		if err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}

		logx.Info("Document added, id %s", id)
		return nil
	},
}

// kbImportCmd 从 JSON 文件批量导入
var kbImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "从 JSON 文件批量导入知识",
	Long:  `从 JSON 文件批量导入知识，文件内容为 [{"content": "...", "crop": "...", "topic": "...", "source": "..."}] 格式。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var items []knowledge.AddItem
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, _, err := buildStore(cfg)
		if err != nil {
			return err
		}

		ids, err := store.AddBatch(context.Background(), items)
		if err != nil {
			return fmt.Errorf("failed to import documents: %w", err)
		}

		logx.Info("Import completed, count %d", len(ids))
		return nil
	},
}

// kbListCmd 列出知识库文档
var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出知识库文档",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, _, err := buildStore(cfg)
		if err != nil {
			return err
		}

		docs, err := store.List(kbLimit)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}

		if kbOutputType == "json" {
			data, _ := json.MarshalIndent(docs, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		rows := [][]string{}
		for _, doc := range docs {
			rows = append(rows, []string{
				doc.ID,
				truncate(doc.Content, 40),
				doc.Metadata["crop"],
				doc.Metadata["topic"],
				doc.Metadata["source"],
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("ID", "Content", "Crop", "Topic", "Source").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()
		logx.Info("Query completed, count %d", len(docs))
		return nil
	},
}

// kbSearchCmd 向量检索
var kbSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "向量检索知识库",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, _, err := buildStore(cfg)
		if err != nil {
			return err
		}

		results, err := store.Search(context.Background(), args[0], kbTopN)
		if err != nil {
			return fmt.Errorf("failed to search: %w", err)
		}

		rows := [][]string{}
		for _, r := range results {
			rows = append(rows, []string{
				r.ID,
				fmt.Sprintf("%.4f", r.Similarity),
				r.Metadata["crop"],
				truncate(r.Content, 50),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("ID", "Similarity", "Crop", "Content").
			Rows(rows...)

		fmt.Println(t)
		return nil
	},
}

// kbStatsCmd 知识库统计
var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "查看知识库统计",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, _, err := buildStore(cfg)
		if err != nil {
			return err
		}

		stats, err := store.Stats()
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		rows := [][]string{}
		for crop, count := range stats.Crops {
			rows = append(rows, []string{"作物", crop, fmt.Sprintf("%d", count)})
		}
		for topic, count := range stats.Topics {
			rows = append(rows, []string{"主题", topic, fmt.Sprintf("%d", count)})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("Type", "Name", "Count").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()
		logx.Info("Knowledge base %s total documents: %d", stats.Collection, stats.Total)
		return nil
	},
}

// kbDeleteCmd 删除文档
var kbDeleteCmd = &cobra.Command{
	Use:   "delete <doc-id>",
	Short: "删除一条知识",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, _, err := buildStore(cfg)
		if err != nil {
			return err
		}

		if err := store.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	},
}

// truncate 截断过长内容用于表格展示
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func init() {
	kbAddCmd.Flags().StringVar(&kbCrop, "crop", "", "作物类别")
	kbAddCmd.Flags().StringVar(&kbTopic, "topic", "", "知识主题")
	kbAddCmd.Flags().StringVar(&kbSource, "source", "", "知识来源")

	kbListCmd.Flags().IntVar(&kbLimit, "limit", 50, "最多列出条数")
	kbListCmd.Flags().StringVarP(&kbOutputType, "output", "o", "table", "输出格式 (table/json)")

	kbSearchCmd.Flags().IntVarP(&kbTopN, "top", "n", 5, "返回结果条数")

	kbCmd.AddCommand(kbAddCmd)
	kbCmd.AddCommand(kbImportCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbSearchCmd)
	kbCmd.AddCommand(kbStatsCmd)
	kbCmd.AddCommand(kbDeleteCmd)
	rootCmd.AddCommand(kbCmd)
}
