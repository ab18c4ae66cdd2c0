package handlers

import "github.com/gin-gonic/gin"

// RegisterUserRoutes mounts user registration and listing. They need no acting user.
func RegisterUserRoutes(r gin.IRouter, users *UserHandler) {
	r.POST("/users", users.CreateUser)
	r.GET("/users", users.ListUsers)
}

// RegisterChatRoutes mounts the chat scoped endpoints. r must carry the identity middleware.
func RegisterChatRoutes(r gin.IRouter, chats *ChatHandler, messages *MessageHandler) {
	r.GET("/chats", chats.ListChats)
	r.POST("/chats", chats.CreateChat)
	r.POST("/chats/:chat_id/join", chats.JoinChat)

	r.GET("/chats/:chat_id/messages", messages.GetChatMessages)
	r.POST("/chats/:chat_id/messages", messages.PostChatMessage)
	r.POST("/chats/:chat_id/read", messages.MarkRead)
	r.GET("/chats/:chat_id/unread", messages.UnreadCount)
}
