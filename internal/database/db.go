package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"

	"recon_report/internal/model"
)

var tableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkTable(tableName string) error {
	if !tableNameRegexp.MatchString(tableName) {
		return fmt.Errorf("非法表名: %q", tableName)
	}
	return nil
}

// InitDB 打开（必要时创建）SQLite 归档库
func InitDB(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// 设置数据库编码为UTF-8
	if _, err := db.Exec("PRAGMA encoding = 'UTF-8'"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateScanTable 创建扫描结果表
func CreateScanTable(db *sql.DB, tableName string) error {
	if err := checkTable(tableName); err != nil {
		return err
	}
	createStmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_file TEXT,
    sort INTEGER,
    ip TEXT,
    port TEXT,
    service TEXT,
    host TEXT,
    os TEXT,
    proto TEXT,
    product TEXT,
    service_fp TEXT,
    script_id TEXT,
    script_output TEXT
);
`, tableName)
	_, err := db.Exec(createStmt)
	return err
}

// SaveScanRows 在一个事务中写入扫描报告行
func SaveScanRows(db *sql.DB, tableName, sourceFile string, rows []model.ScanRow) error {
	if err := CreateScanTable(db, tableName); err != nil {
		return err
	}
	insertSQL := fmt.Sprintf(`
INSERT INTO %s (source_file, sort, ip, port, service, host, os, proto, product, service_fp, script_id, script_output)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableName)

	return inTx(db, insertSQL, func(stmt *sql.Stmt) error {
		for _, r := range rows {
			if _, err := stmt.Exec(sourceFile, r.Sort, r.IP, r.Port, r.Service, r.Host, r.OS,
				r.Proto, r.Product, r.ServiceFP, r.ScriptID, r.ScriptOutput); err != nil {
				return fmt.Errorf("写入 %s:%s 失败: %w", r.IP, r.Port, err)
			}
		}
		return nil
	})
}

// CreateIOCTable 创建 IOC 表
func CreateIOCTable(db *sql.DB, tableName string) error {
	if err := checkTable(tableName); err != nil {
		return err
	}
	createStmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tipper TEXT,
    kind TEXT,
    value TEXT
);
`, tableName)
	_, err := db.Exec(createStmt)
	return err
}

// SaveIOCs 写入一类 IOC 记录
func SaveIOCs(db *sql.DB, tableName string, kind model.IOCKind, records []model.IOCRecord) error {
	if err := CreateIOCTable(db, tableName); err != nil {
		return err
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (tipper, kind, value) VALUES (?, ?, ?)", tableName)

	return inTx(db, insertSQL, func(stmt *sql.Stmt) error {
		for _, r := range records {
			if _, err := stmt.Exec(r.Source, kind.String(), r.Value); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", r.Value, err)
			}
		}
		return nil
	})
}

func inTx(db *sql.DB, query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CountRows 查询表中记录数
func CountRows(db *sql.DB, tableName string) (int, error) {
	if err := checkTable(tableName); err != nil {
		return 0, err
	}
	var count int
	err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)).Scan(&count)
	return count, err
}

// GetExistingIPs 获取扫描表中已存在的所有IP
func GetExistingIPs(db *sql.DB, tableName string) (map[string]bool, error) {
	if err := checkTable(tableName); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT DISTINCT ip FROM %s WHERE ip IS NOT NULL AND ip != ''", tableName)
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existingIPs := make(map[string]bool)
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			continue
		}
		existingIPs[ip] = true
	}
	return existingIPs, rows.Err()
}

// CountByKind 按 IOC 类型统计记录数
func CountByKind(db *sql.DB, tableName string) (map[string]int, error) {
	if err := checkTable(tableName); err != nil {
		return nil, err
	}
	rows, err := db.Query(fmt.Sprintf("SELECT kind, COUNT(*) FROM %s GROUP BY kind", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
