package editor

import "errors"

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrProtectedNode = errors.New("the start node cannot be modified")
	ErrNotDroppable  = errors.New("node kind cannot be added to the canvas")
	ErrSelfLoop      = errors.New("a node cannot connect to itself")
	ErrInvalidPort   = errors.New("invalid source handle")
	ErrDuplicateEdge = errors.New("connection already exists")
	ErrPortOccupied  = errors.New("handle already has a connection")
	ErrInvalidAttrs  = errors.New("invalid node attributes")
)
