package stats

import (
	"math"
	"sort"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
)

// Record counts outcomes from the tracked player's perspective.
type Record struct {
	Wins   int
	Draws  int
	Losses int
}

// Total returns the number of games in the record.
func (r Record) Total() int { return r.Wins + r.Draws + r.Losses }

// Points returns the score sum: one per win, half per draw.
func (r Record) Points() float64 {
	return float64(r.Wins) + 0.5*float64(r.Draws)
}

func (r *Record) update(res game.Result, dir Direction) {
	switch res {
	case game.Win:
		r.Wins += int(dir)
	case game.Draw:
		r.Draws += int(dir)
	default:
		r.Losses += int(dir)
	}
}

// OpeningNode aggregates every game that reached one opening. Main-opening
// nodes additionally own one child node per named variation; variation nodes
// never nest further.
type OpeningNode struct {
	name        string
	isVariation bool

	games      []*game.Game
	record     Record
	moveStats  *MoveStats
	errTotal   float64
	plyTotal   int
	variations map[string]*OpeningNode
}

// NewOpeningNode returns an empty main-opening node.
func NewOpeningNode(name string) *OpeningNode {
	return &OpeningNode{
		name:       name,
		moveStats:  NewMoveStats(),
		variations: map[string]*OpeningNode{},
	}
}

func newVariationNode(name string) *OpeningNode {
	return &OpeningNode{
		name:        name,
		isVariation: true,
		moveStats:   NewMoveStats(),
	}
}

// AddGame folds an analyzed game into this node's aggregates. For a
// main-opening node carrying games with a named variation, the caller is the
// tree, which cascades into the matching variation child.
func (n *OpeningNode) AddGame(g *game.Game) error {
	gameErr, err := g.GameError()
	if err != nil {
		return err
	}
	if err := n.moveStats.Update(g, Add); err != nil {
		return err
	}
	n.games = append(n.games, g)
	n.record.update(g.Result(), Add)
	n.errTotal += gameErr
	n.plyTotal += g.PlyLeftBook()
	return nil
}

// AddVariation folds a game into the named variation child, creating it on
// first use. Variation nodes do not nest: calling this on a variation node is
// a contract violation.
func (n *OpeningNode) AddVariation(variation string, g *game.Game) error {
	if n.isVariation {
		return errors.NewContractError("variation node %q cannot hold nested variations", n.name)
	}
	child, ok := n.variations[variation]
	if !ok {
		child = newVariationNode(variation)
		n.variations[variation] = child
	}
	return child.AddGame(g)
}

// RemoveGame reverses a previous AddGame. Removing a game the node never
// held is a contract violation.
func (n *OpeningNode) RemoveGame(g *game.Game) error {
	idx := -1
	for i, held := range n.games {
		if held == g {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NewContractError("game not present in opening %q", n.name)
	}
	gameErr, err := g.GameError()
	if err != nil {
		return err
	}
	if err := n.moveStats.Update(g, Remove); err != nil {
		return err
	}
	n.games = append(n.games[:idx], n.games[idx+1:]...)
	n.record.update(g.Result(), Remove)
	n.errTotal -= gameErr
	n.plyTotal -= g.PlyLeftBook()

	if !n.isVariation && g.Variation() != "" {
		child, ok := n.variations[g.Variation()]
		if !ok {
			return errors.NewContractError("game not present in variation %q of %q", g.Variation(), n.name)
		}
		if err := child.RemoveGame(g); err != nil {
			return err
		}
		if child.TotalGames() == 0 {
			delete(n.variations, g.Variation())
		}
	}
	return nil
}

// Name returns the opening (or variation) name this node aggregates.
func (n *OpeningNode) Name() string { return n.name }

// TotalGames returns the number of games held, always equal to the length of
// the node's game list.
func (n *OpeningNode) TotalGames() int { return len(n.games) }

// Games returns the games held by this node, in insertion order.
func (n *OpeningNode) Games() []*game.Game {
	out := make([]*game.Game, len(n.games))
	copy(out, n.games)
	return out
}

// Record returns the node's win/draw/loss record.
func (n *OpeningNode) Record() Record { return n.record }

// AvgError returns the mean per-game error across the node, rounded to two
// decimals. An empty node reports zero.
func (n *OpeningNode) AvgError() float64 {
	if len(n.games) == 0 {
		return 0
	}
	return round2(n.errTotal / float64(len(n.games)))
}

// AvgPlyLeftBook returns the mean number of user plies played in book,
// rounded up to a whole ply.
func (n *OpeningNode) AvgPlyLeftBook() int {
	if len(n.games) == 0 {
		return 0
	}
	return int(math.Ceil(float64(n.plyTotal) / float64(len(n.games))))
}

// MoveStats returns the node's per-move-index aggregates.
func (n *OpeningNode) MoveStats() *MoveStats { return n.moveStats }

// Variation returns the named variation child, if present.
func (n *OpeningNode) Variation(name string) (*OpeningNode, bool) {
	child, ok := n.variations[name]
	return child, ok
}

// Variations returns the variation children sorted by name.
func (n *OpeningNode) Variations() []*OpeningNode {
	out := make([]*OpeningNode, 0, len(n.variations))
	for _, child := range n.variations {
		out = append(out, child)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Tree is the two-level opening aggregation: main openings at the top, their
// variations one level down. Games enter through the tree so that main and
// variation aggregates stay consistent.
type Tree struct {
	openings map[string]*OpeningNode
}

// NewTree returns an empty opening tree.
func NewTree() *Tree {
	return &Tree{openings: map[string]*OpeningNode{}}
}

// AddGame files one analyzed game under its main opening and, when it has a
// named variation, under the variation child as well.
func (t *Tree) AddGame(g *game.Game) error {
	node, ok := t.openings[g.MainOpening()]
	if !ok {
		node = NewOpeningNode(g.MainOpening())
		t.openings[g.MainOpening()] = node
	}
	if err := node.AddGame(g); err != nil {
		return err
	}
	if v := g.Variation(); v != "" {
		return node.AddVariation(v, g)
	}
	return nil
}

// RemoveGame reverses AddGame, cascading into the variation child. Removing
// a game whose opening the tree never saw is a contract violation. Openings
// left empty disappear from the tree.
func (t *Tree) RemoveGame(g *game.Game) error {
	node, ok := t.openings[g.MainOpening()]
	if !ok {
		return errors.NewContractError("opening %q not present in tree", g.MainOpening())
	}
	if err := node.RemoveGame(g); err != nil {
		return err
	}
	if node.TotalGames() == 0 {
		delete(t.openings, g.MainOpening())
	}
	return nil
}

// Opening returns the node for a main opening name, if present.
func (t *Tree) Opening(name string) (*OpeningNode, bool) {
	node, ok := t.openings[name]
	return node, ok
}

// Openings returns all main-opening nodes sorted by name.
func (t *Tree) Openings() []*OpeningNode {
	out := make([]*OpeningNode, 0, len(t.openings))
	for _, node := range t.openings {
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// TotalGames returns the number of games across all openings.
func (t *Tree) TotalGames() int {
	total := 0
	for _, node := range t.openings {
		total += node.TotalGames()
	}
	return total
}
