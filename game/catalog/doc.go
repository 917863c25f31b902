// Package catalog loads hero, monster and item tables from YAML and serves
// as the character data source for the engine.
//
// A default catalog is embedded in the binary. Custom tables can be loaded
// with LoadFile; they use the same layout as default.yaml.
package catalog
