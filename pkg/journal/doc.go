// Package journal keeps a durable record of every migration run in a BoltDB
// file: the stages reached, each item outcome, and the content of the
// definition and registry files before they were changed. An operator uses
// it to repair a run that stopped part way.
package journal
