package metatable

import "github.com/kasuganosora/tablecore/pkg/virtual"

var _ virtual.ConstructedTable = (*MetaTable)(nil)
