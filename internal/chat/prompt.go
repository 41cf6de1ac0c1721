package chat

import "fmt"

const (
	preLoginPrompt = "\n--- Welcome to Chat Server  ---\n\n" +
		"Please login with a username. \nType 'login <any_username>'"

	commandPrompt = "\nFOR LIST OF ONLINE USERS           --> users\n" +
		"FOR SENDING MESSAGE TO ANY USER    --> msg <user> <message_body>\n" +
		"FOR SENDING MESSAGE TO A TOPIC     --> msg <#topic> <message_body>\n" +
		"FOR JOINING / LEAVING A TOPIC      --> join <#topic> / leave <#topic>\n" +
		"FOR A DIRECT MESSAGING LINE        --> connect <user_to_connect_with>\n" +
		"FOR ENDING THE DIRECT LINE         --> disconnect\n" +
		"FOR BROADCASTING (ON/OFF)          --> broadcast\n" +
		"FOR LEAVING                        --> quit / logoff\n" +
		"FOR HELP                           --> help\n"

	broadcastOnText = "\nBroadcasting is ON.\n" +
		"You are broadcasting to everyone in the chat .. \n" +
		"Type 'broadcast' to stop broadcasting\n"
	broadcastOffText = "\nBroadcasting is OFF.\nType 'help' for list of commands"

	alreadyConnectedText = "You are already connected for direct messaging. Type 'disconnect' first"
	notConnectedText     = "You are not connected to any user for direct chat\n" +
		"Please type 'connect <user>' for a direct line messaging"
	usernameTakenText = "A user already exists with that username"
	noOtherUsersText  = "No other users are connected"
	serverFullText    = "Server is full, try again later"
	byeText           = "Bye"

	usageLogin   = "usage: login <username>"
	usageMsg     = "usage: msg <user|#topic> <message>"
	usageJoin    = "usage: join <#topic>"
	usageLeave   = "usage: leave <#topic>"
	usageConnect = "usage: connect <username>"
)

func welcomeText(identity string) string {
	return "You are connected as : " + identity
}

func loginSuccessText(identity string) string {
	return "\n--- SUCCESS --- \nYou are Logged in as : " + identity + "\n"
}

func alreadyLoggedInText(identity string) string {
	return "You are already logged in as : " + identity
}

func userOnlineText(identity string) string {
	return "Users online : " + identity
}

func userJoinedText(identity string) string {
	return "A new user joined the server : " + identity
}

func userLeftText(identity string) string {
	return "... " + identity + " has left the chat ..."
}

func directConnectedText(peer string) string {
	return fmt.Sprintf("\nYou are directly connected to '%s' Start typing a message...\n"+
		"Type 'disconnect' to end direct messaging\n", peer)
}

func disconnectedText(peer string) string {
	return "Disconnected from user : " + peer
}

func topicMessageText(topic, sender, body string) string {
	return "msg " + topic + ":" + sender + " " + body
}

func privateMessageText(sender, body string) string {
	return "msg received from " + sender + " : " + body
}

func directMessageText(sender, body string) string {
	return "--> Message received from " + sender + " : " + body
}

func broadcastMessageText(sender, body string) string {
	return "--> Broadcast received from " + sender + " : " + body
}

func unknownCommandText(keyword string) string {
	return "unknown command '" + keyword + "' Type 'help' for list of commands"
}
