package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// WsHandler Gin路由处理函数
// 升级连接后该连接只接收在线状态事件，客户端发来的数据一律忽略
func WsHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	GetManager().AddClient(client)

	// 写协程：把广播消息推给该连接
	go func() {
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		// Send已关闭，连接已被移除
		_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	}()

	// 读循环：丢弃入站数据，仅用于感知连接断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	GetManager().RemoveClient(client)
	_ = conn.Close()
}
