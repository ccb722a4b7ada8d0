package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"ai-recall-be/internal/constant"
	"ai-recall-be/internal/dto"
	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/repository/specification"
	"ai-recall-be/internal/repository/unitofwork"
	"ai-recall-be/pkg/llm"
	"ai-recall-be/pkg/rag/render"
	"ai-recall-be/pkg/rag/response"
	"ai-recall-be/pkg/rag/search"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("chat session not found")

type IChatService interface {
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	searcher   *search.Searcher
	generator  *response.Generator
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	searcher *search.Searcher,
	generator *response.Generator,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		searcher:   searcher,
		generator:  generator,
	}
}

// Ask answers a question over the owner's mirror. Zero retrieval hits
// still go to generation with the explicit empty-context block, so the
// reply can say nothing relevant was saved.
func (s *chatService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.resolveSession(ctx, uow, userId, req)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK == 0 {
		topK = constant.DefaultTopK
	}

	hits, err := s.searcher.Search(ctx, userId, req.Query, topK, req.SourceTag)
	if err != nil {
		return nil, err
	}

	contextBlock := render.Context(hits)
	answer, err := s.generator.Generate(ctx, req.Query, contextBlock, history)
	if err != nil {
		return nil, err
	}

	citations := render.Citations(hits)
	if err := s.persistTurn(ctx, uow, session, req.Query, answer, hits); err != nil {
		return nil, err
	}

	res := &dto.AskResponse{
		ChatSessionId: session.Id,
		Answer:        answer,
		Sources:       make([]dto.CitationDTO, 0, len(citations)),
	}
	for _, c := range citations {
		res.Sources = append(res.Sources, dto.CitationDTO{
			SourceTag: c.SourceTag,
			Label:     c.Label,
			URL:       c.URL,
		})
	}
	return res, nil
}

func (s *chatService) GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, &dto.ChatSessionResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return result, nil
}

func (s *chatService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, 0, len(messages))
	for _, msg := range messages {
		messageIds = append(messageIds, msg.Id)
	}
	citationsByMessage := map[uuid.UUID][]dto.CitationDTO{}
	if len(messageIds) > 0 {
		citations, err := uow.ChatCitationRepository().FindAllByMessageIds(ctx, messageIds)
		if err != nil {
			return nil, err
		}
		for _, c := range citations {
			citation := dto.CitationDTO{SourceTag: "", Label: "", URL: ""}
			if c.ContentItem != nil {
				citation.SourceTag = c.ContentItem.SourceTag
				citation.Label = c.ContentItem.Title
				citation.URL = c.ContentItem.URL
			}
			citationsByMessage[c.ChatMessageId] = append(citationsByMessage[c.ChatMessageId], citation)
		}
	}

	result := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, &dto.ChatMessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Chat,
			CreatedAt: msg.CreatedAt,
			Citations: citationsByMessage[msg.Id],
		})
	}
	return result, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, req *dto.AskRequest) (*entity.ChatSession, error) {
	if req.ChatSessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *req.ChatSessionId},
			specification.OwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		return session, nil
	}

	title := req.Query
	if utf8.RuneCountInString(title) > constant.SessionTitleMaxChars {
		title = string([]rune(title)[:constant.SessionTitleMaxChars])
	}
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Chat})
	}
	return history, nil
}

func (s *chatService) persistTurn(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, query, answer string, hits []search.Hit) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatRoleUser,
		Chat:          query,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return err
	}

	assistantMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatRoleAssistant,
		Chat:          answer,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return err
	}

	if len(hits) > 0 {
		citations := make([]*entity.ChatCitation, 0, len(hits))
		for _, hit := range hits {
			citations = append(citations, &entity.ChatCitation{
				Id:            uuid.New(),
				ChatMessageId: assistantMsg.Id,
				ContentItemId: hit.Item.Id,
				CreatedAt:     time.Now(),
			})
		}
		if err := uow.ChatCitationRepository().CreateBulk(ctx, citations); err != nil {
			return err
		}
	}

	now := time.Now()
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return err
	}

	return uow.Commit()
}
