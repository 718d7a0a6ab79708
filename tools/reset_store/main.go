package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// 将用户数据文件重置为空文档，用于本地开发与测试前清场

type Config struct {
	Store struct {
		Dir  string `yaml:"dir"`
		File string `yaml:"file"`
	} `yaml:"store"`
}

type document struct {
	Users []json.RawMessage `json:"users"`
}

func main() {
	config := loadConfig()

	path := filepath.Join(config.Store.Dir, config.Store.File)

	// 统计现有记录数
	count := 0
	if data, err := os.ReadFile(path); err == nil {
		var doc document
		if err := json.Unmarshal(data, &doc); err == nil {
			count = len(doc.Users)
		}
	}

	// 写入空文档
	if err := os.MkdirAll(config.Store.Dir, 0755); err != nil {
		log.Fatalf("创建数据目录失败: %v", err)
	}
	empty, _ := json.MarshalIndent(document{Users: []json.RawMessage{}}, "", "  ")
	if err := os.WriteFile(path, empty, 0644); err != nil {
		log.Fatalf("写入数据文件失败: %v", err)
	}

	fmt.Println("用户数据文件已重置")
	fmt.Printf("路径: %s\n", path)
	fmt.Printf("清除记录数: %d\n", count)
}

func loadConfig() *Config {
	config := &Config{}
	config.Store.Dir = "data"
	config.Store.File = "users.json"

	data, err := os.ReadFile("config/config.yaml")
	if err != nil {
		return config
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	return config
}
