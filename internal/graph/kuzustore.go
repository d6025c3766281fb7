//go:build cgo

package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"
	"go.uber.org/zap"
)

// KuzuStore implements Store on top of KuzuDB. It answers the same queries as
// Index with Cypher, which lets a large graph live in a persistent database
// directory instead of process memory. It requires CGO because the go-kuzu
// driver wraps KuzuDB's C library.
type KuzuStore struct {
	db     *kuzu.Database
	conn   *kuzu.Connection
	logger *zap.Logger
	stats  Stats
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore imports doc into an in-memory KuzuDB instance.
func NewKuzuStore(doc Document, logger *zap.Logger) (*KuzuStore, error) {
	return openKuzu(":memory:", doc, logger)
}

// NewKuzuFileStore opens (or creates) a file-based KuzuDB at dbPath. The
// document is imported only when the database holds no nodes yet, so a
// persisted graph is reused across runs.
func NewKuzuFileStore(dbPath string, doc Document, logger *zap.Logger) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath, doc, logger)
}

func openKuzu(path string, doc Document, logger *zap.Logger) (*KuzuStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn, logger: logger}

	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	existing, err := s.countPresent()
	if err != nil {
		s.Close()
		return nil, err
	}
	if existing == 0 {
		if err := s.importDocument(doc); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := s.loadStats(len(doc.Edges)); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed on open.
// Order matters: node tables must precede relationship tables.
//
// CulturalNode.ord is the load-order position; placeholder rows (present =
// false) stand in for edge targets that were never declared as nodes so that
// their ownership is still recorded. OWNS.seq is the edge declaration order.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS CulturalNode(
		id STRING,
		label STRING,
		label_lower STRING,
		type STRING,
		type_key STRING,
		ord INT64,
		present BOOLEAN,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS OWNS(FROM CulturalNode TO CulturalNode, relation STRING, seq INT64)`,
}

func (s *KuzuStore) initSchema() error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Import ----------

// importDocument writes the deduplicated nodes and every country-rooted edge.
func (s *KuzuStore) importDocument(doc Document) error {
	nodes := dedupeNodes(doc.Nodes)
	declared := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		declared[n.ID] = true
		if err := s.addNode(n, int64(i), true); err != nil {
			return err
		}
	}

	countries := countryLabels(nodes)
	for seq, e := range doc.Edges {
		if _, ok := countries[e.Source]; !ok {
			continue
		}
		if !declared[e.Target] {
			if err := s.addNode(Node{ID: e.Target}, -1, false); err != nil {
				return err
			}
			declared[e.Target] = true
		}
		err := s.exec(
			`MATCH (c:CulturalNode {id: $src}), (n:CulturalNode {id: $dst})
			 CREATE (c)-[:OWNS {relation: $rel, seq: $seq}]->(n)`,
			map[string]any{
				"src": e.Source,
				"dst": e.Target,
				"rel": e.Relation,
				"seq": int64(seq),
			},
		)
		if err != nil {
			return err
		}
	}

	s.logger.Debug("imported knowledge graph into kuzu",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(doc.Edges)))
	return nil
}

func (s *KuzuStore) addNode(n Node, ord int64, present bool) error {
	return s.exec(
		`CREATE (n:CulturalNode {
			id: $id,
			label: $label,
			label_lower: $lower,
			type: $type,
			type_key: $key,
			ord: $ord,
			present: $present
		})`,
		map[string]any{
			"id":      n.ID,
			"label":   n.Label,
			"lower":   strings.ToLower(n.Label),
			"type":    n.Type,
			"key":     typeKey(n.Type),
			"ord":     ord,
			"present": present,
		},
	)
}

// ---------- Read operations ----------

// FindNodeByLabel returns the first declared node whose label matches ignoring case.
func (s *KuzuStore) FindNodeByLabel(label string) (CulturalNode, bool) {
	rows, err := s.query(
		`MATCH (n:CulturalNode)
		 WHERE n.present AND n.label_lower = $lower
		 RETURN n.id, n.label, n.type
		 ORDER BY n.ord LIMIT 1`,
		map[string]any{"lower": strings.ToLower(label)},
	)
	if err != nil {
		s.logger.Warn("kuzu: find node by label", zap.String("label", label), zap.Error(err))
		return CulturalNode{}, false
	}
	if len(rows) == 0 {
		return CulturalNode{}, false
	}
	r := rows[0]
	return CulturalNode{ID: toString(r[0]), Label: toString(r[1]), Type: toString(r[2])}, true
}

// OwnerCulture returns the label of the last country declared as owning nodeID.
func (s *KuzuStore) OwnerCulture(nodeID string) (string, bool) {
	rows, err := s.query(
		`MATCH (c:CulturalNode)-[r:OWNS]->(n:CulturalNode {id: $id})
		 RETURN c.label
		 ORDER BY r.seq DESC LIMIT 1`,
		map[string]any{"id": nodeID},
	)
	if err != nil {
		s.logger.Warn("kuzu: owner culture", zap.String("node", nodeID), zap.Error(err))
		return "", false
	}
	if len(rows) == 0 {
		return "", false
	}
	return toString(rows[0][0]), true
}

// NodesByTypeAndCulture returns the nodes of nodeType owned by culture in
// edge declaration order.
func (s *KuzuStore) NodesByTypeAndCulture(nodeType, culture string) []CulturalNode {
	key, ok := s.cultureKey(culture)
	if !ok {
		return []CulturalNode{}
	}
	rows, err := s.query(
		`MATCH (c:CulturalNode)-[r:OWNS]->(n:CulturalNode)
		 WHERE n.present AND c.label = $culture AND n.type_key = $type
		 RETURN n.id, n.label, n.type
		 ORDER BY r.seq`,
		map[string]any{"culture": key, "type": nodeType},
	)
	if err != nil {
		s.logger.Warn("kuzu: nodes by type and culture",
			zap.String("type", nodeType), zap.String("culture", culture), zap.Error(err))
		return []CulturalNode{}
	}
	out := make([]CulturalNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, CulturalNode{
			ID:      toString(r[0]),
			Label:   toString(r[1]),
			Type:    toString(r[2]),
			Culture: key,
		})
	}
	return out
}

// cultureKey resolves culture case-insensitively to the country label whose
// first owning edge (onto a declared node) comes earliest.
func (s *KuzuStore) cultureKey(culture string) (string, bool) {
	rows, err := s.query(
		`MATCH (c:CulturalNode)-[r:OWNS]->(n:CulturalNode)
		 WHERE n.present AND c.label_lower = $lower
		 RETURN c.label
		 ORDER BY r.seq LIMIT 1`,
		map[string]any{"lower": strings.ToLower(culture)},
	)
	if err != nil || len(rows) == 0 {
		return "", false
	}
	return toString(rows[0][0]), true
}

// Stats returns the counts captured when the store was opened.
func (s *KuzuStore) Stats() Stats {
	return s.stats
}

func (s *KuzuStore) loadStats(edgeCount int) error {
	nodes, err := s.countPresent()
	if err != nil {
		return err
	}
	cultures, err := s.count(
		`MATCH (c:CulturalNode)-[:OWNS]->(n:CulturalNode) WHERE n.present RETURN count(DISTINCT c.label)`)
	if err != nil {
		return err
	}
	owned, err := s.count(`MATCH ()-[:OWNS]->(n:CulturalNode) RETURN count(DISTINCT n.id)`)
	if err != nil {
		return err
	}
	s.stats = Stats{
		NodeCount:    nodes,
		EdgeCount:    edgeCount,
		CultureCount: cultures,
		OwnedCount:   owned,
	}
	return nil
}

// ---------- Internal helpers ----------

func (s *KuzuStore) countPresent() (int, error) {
	return s.count(`MATCH (n:CulturalNode) WHERE n.present RETURN count(n)`)
}

func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
