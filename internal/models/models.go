package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name        string  `json:"name" binding:"required"`
	Surname     string  `json:"surname" binding:"required"`
	Username    *string `json:"username"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	DisplayName *string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Surname           string    `json:"surname"`
	Username          *string   `json:"username,omitempty"`
	Email             string    `json:"email"`
	DisplayName       *string   `json:"displayName,omitempty"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty"`
	IsAdmin           bool      `json:"isAdmin"`
	IsOnline          bool      `json:"isOnline"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ============================================
// Group DTOs
// ============================================

type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

type InviteRequest struct {
	GroupID      string `json:"groupId" binding:"required,uuid"`
	TargetUserID string `json:"targetUserId" binding:"required,uuid"`
}

type CancelInviteRequest struct {
	TargetUserID string `json:"targetUserId" binding:"required,uuid"`
}

// ============================================
// Message DTOs
// ============================================

type SendMessageRequest struct {
	SenderID   string `json:"senderId" binding:"required,uuid"`
	ReceiverID string `json:"receiverId" binding:"required,uuid"`
	Content    string `json:"content" binding:"required"`
}

// ============================================
// Health
// ============================================

type HealthResponse struct {
	Status           string `json:"status"`
	Database         string `json:"database"`
	Cache            string `json:"cache"`
	ConnectedClients int    `json:"connectedClients"`
	OnlineUsers      int    `json:"onlineUsers"`
}
