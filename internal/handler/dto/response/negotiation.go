package response

import (
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"
)

type RoomResponse struct {
	Room *readmodel.RoomRM `json:"room"`
}

func FromRoomRM(rm *readmodel.RoomRM) *RoomResponse {
	return &RoomResponse{Room: rm}
}

type SnapshotResponse struct {
	Room     *readmodel.RoomRM     `json:"room"`
	Messages []negotiation.Message `json:"messages"`
}

func FromSnapshotRM(rm *readmodel.RoomSnapshotRM) *SnapshotResponse {
	return &SnapshotResponse{Room: rm.Room, Messages: rm.Messages}
}

type HistoryResponse struct {
	Messages []negotiation.Message `json:"messages"`
	Count    int                   `json:"count"`
}

func FromMessages(messages []negotiation.Message) *HistoryResponse {
	return &HistoryResponse{Messages: messages, Count: len(messages)}
}

type MessageResponse struct {
	Message *negotiation.Message `json:"message"`
}

func FromMessage(m *negotiation.Message) *MessageResponse {
	return &MessageResponse{Message: m}
}
