package match

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/krishanu7/battleship-engine/db"
	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/merkle"
)

var ErrMatchNotFound = errors.New("match not found")

type Publisher interface {
	Publish(ctx context.Context, event interface{}) error
}

type ResultRecorder interface {
	RecordResult(ctx context.Context, r db.Result) error
}

type Service struct {
	matches map[string]*Match
	mu      sync.RWMutex

	// seeds one rand.Rand per match; games never share a generator
	rng   *rand.Rand
	rngMu sync.Mutex

	publisher Publisher
	recorder  ResultRecorder
	now       func() time.Time
}

// NewService accepts nil publisher or recorder; events and results are then
// dropped.
func NewService(rng *rand.Rand, publisher Publisher, recorder ResultRecorder) *Service {
	return &Service{
		matches:   make(map[string]*Match),
		rng:       rng,
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

func (s *Service) newMatchRand() *rand.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

// Create starts a match against the computer and commits to the computer's
// fleet layout.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Match, error) {
	g, err := game.NewGame(req.Difficulty, s.newMatchRand())
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	salt := make([]byte, merkle.SaltSize)
	if _, err := crand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	tree, err := merkle.BuildTree(g.AiPlayer.Board.Occupancy(), salt)
	if err != nil {
		return nil, fmt.Errorf("failed to commit fleet: %w", err)
	}
	commitment := tree.Commitment()

	m := &Match{
		ID:         uuid.NewString()[:8],
		PlayerID:   req.PlayerID,
		ClientIP:   req.ClientIP,
		CreatedAt:  s.now(),
		Game:       g,
		Commitment: commitment,
		salt:       salt,
		tree:       tree,
	}

	s.mu.Lock()
	s.matches[m.ID] = m
	s.mu.Unlock()

	log.Printf("Created match %s at difficulty %s", m.ID, req.Difficulty)
	s.publish(ctx, Event{
		Type:       EventMatchCreated,
		MatchID:    m.ID,
		Difficulty: req.Difficulty.String(),
		Commitment: merkle.EncodeHex(commitment),
	})
	return m, nil
}

func (s *Service) Get(matchID string) (*Match, error) {
	s.mu.RLock()
	m, exists := s.matches[matchID]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return m, nil
}

// lock fetches a running match and takes its lock. The caller must unlock.
// A match finished while the caller waited for the lock counts as missing.
func (s *Service) lock(matchID string) (*Match, error) {
	m, err := s.Get(matchID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return m, nil
}

func (s *Service) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Move plays one full turn: the player's launch and, unless it was invalid or
// ended the war, the computer's retaliation.
func (s *Service) Move(ctx context.Context, matchID, label string) (*TurnResult, error) {
	m, err := s.lock(matchID)
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	result := &TurnResult{MatchID: m.ID}
	result.Player = m.Game.PlayerMove(label)
	if result.Player.InvalidMove {
		return result, nil
	}
	s.publishStrike(ctx, m, "PLAYER", result.Player)

	if !result.Player.WarOver {
		ai := m.Game.AiMove()
		result.Ai = &ai
		if !ai.InvalidMove {
			s.publishStrike(ctx, m, "AI", ai)
		}
	}

	if m.Game.Over() {
		result.WarOver = true
		result.Winner = m.Game.Winner()
		result.Reveal = s.finish(ctx, m, result.Winner, false)
	}
	return result, nil
}

// Forfeit ends the match as a win for the computer.
func (s *Service) Forfeit(ctx context.Context, matchID string) (*Reveal, error) {
	m, err := s.lock(matchID)
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	return s.finish(ctx, m, "AI", true), nil
}

func (s *Service) View(matchID string) (*View, error) {
	m, err := s.lock(matchID)
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	g := m.Game
	return &View{
		MatchID:        m.ID,
		Difficulty:     g.Difficulty.String(),
		Commitment:     merkle.EncodeHex(m.Commitment),
		Fleet:          g.Player1.FleetGrid().Rows(),
		Target:         g.Player1.TargetGrid().Rows(),
		ShipsRemaining: g.Player1.ShipsRemaining(),
		EnemyRemaining: g.AiPlayer.ShipsRemaining(),
		PlayerShots:    len(g.Player1.PlayerMoves),
		OpponentShots:  len(g.AiPlayer.PlayerMoves),
	}, nil
}

// finish must be called with m.mu held.
func (s *Service) finish(ctx context.Context, m *Match, winner string, forfeit bool) *Reveal {
	m.finished = true
	s.mu.Lock()
	delete(s.matches, m.ID)
	s.mu.Unlock()

	reveal := m.reveal()
	log.Printf("Match %s over: winner=%s forfeit=%v", m.ID, winner, forfeit)

	if s.recorder != nil {
		err := s.recorder.RecordResult(ctx, db.Result{
			MatchID:     m.ID,
			PlayerID:    m.PlayerID,
			Difficulty:  m.Game.Difficulty.String(),
			Winner:      winner,
			PlayerShots: len(m.Game.Player1.PlayerMoves),
			AiShots:     len(m.Game.AiPlayer.PlayerMoves),
			ClientIP:    db.InetFromIP(m.ClientIP),
			FinishedAt:  s.now(),
		})
		if err != nil {
			log.Printf("Failed to record result for match %s: %v", m.ID, err)
		}
	}

	s.publish(ctx, Event{
		Type:    EventMatchOver,
		MatchID: m.ID,
		Winner:  winner,
		Forfeit: forfeit,
		Reveal:  reveal,
	})
	return reveal
}

func (m *Match) reveal() *Reveal {
	var layout strings.Builder
	for _, bit := range m.Game.AiPlayer.Board.Occupancy() {
		layout.WriteByte('0' + bit)
	}
	return &Reveal{
		Salt:   merkle.EncodeHex(m.salt),
		Layout: layout.String(),
		Ships:  m.Game.AiPlayer.Board.ShipCells(),
	}
}

// VerifyReveal checks a revealed layout against the commitment published
// when the match was created.
func VerifyReveal(commitmentHex string, r *Reveal) bool {
	commitment, err := merkle.DecodeHex(commitmentHex)
	if err != nil || r == nil {
		return false
	}
	salt, err := merkle.DecodeHex(r.Salt)
	if err != nil {
		return false
	}
	bits := make([]uint8, len(r.Layout))
	for i := 0; i < len(r.Layout); i++ {
		switch r.Layout[i] {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return false
		}
	}
	return merkle.Verify(commitment, bits, salt)
}

// VerifyStrike checks a player strike event against the commitment published
// when the match was created: the opened cell must be the struck one, and it
// must hold a ship exactly when the strike was a hit.
func VerifyStrike(commitmentHex string, e Event) bool {
	if e.Type != EventStrike || e.Proof == nil {
		return false
	}
	c, err := game.ParseCoordinate(e.Coordinate)
	if err != nil || c.X > game.BoardSizeX || c.Y > game.BoardSizeY || c.Y < 1 {
		return false
	}
	if e.Proof.Index != game.PositionIndex(c, game.BoardSizeY) {
		return false
	}
	if (e.Proof.Bit == 1) != (e.Result == "hit") {
		return false
	}
	commitment, err := merkle.DecodeHex(commitmentHex)
	if err != nil {
		return false
	}
	return merkle.VerifyOpening(commitment, e.Proof)
}

func (s *Service) publishStrike(ctx context.Context, m *Match, attacker string, resp game.MoveResponse) {
	if resp.Report == nil {
		return
	}
	result := "miss"
	if resp.Report.IsHit {
		result = "hit"
	}
	event := Event{
		Type:       EventStrike,
		MatchID:    m.ID,
		Attacker:   attacker,
		Coordinate: resp.Report.GridLabel(),
		Result:     result,
	}
	if resp.Report.IsShipDestroyed {
		event.ShipDestroyed = resp.Report.ShipIDHit
	}
	if attacker == "PLAYER" {
		idx := m.Game.AiPlayer.Board.Index(resp.Report.Launch.Coordinate)
		proof, err := m.tree.Open(idx)
		if err != nil {
			log.Printf("Failed to open %s in match %s: %v", event.Coordinate, m.ID, err)
		}
		event.Proof = proof
	}
	log.Printf("%s attacked %s in match %s: %s", attacker, event.Coordinate, m.ID, result)
	s.publish(ctx, event)
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	event.At = s.now().Unix()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish %s event for match %s: %v", event.Type, event.MatchID, err)
	}
}
